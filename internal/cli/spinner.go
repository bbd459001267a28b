package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// stage is a pipeline step a command can wait on.
type stage int

const (
	stageRender stage = iota
	stageFinalize
	stageOutline
)

func (s stage) verb() string {
	switch s {
	case stageFinalize:
		return "Finalizing"
	case stageOutline:
		return "Drawing outline of"
	}
	return "Rendering"
}

// failed is the line printed when the stage does not complete.
func (s stage) failed() string {
	switch s {
	case stageFinalize:
		return "Finalize failed"
	case stageOutline:
		return "Outline failed"
	}
	return "Render failed"
}

var spinnerFrames = []string{"▖", "▘", "▝", "▗"}

// spinner shows the running stage on w until stopped or until its context
// ends.
type spinner struct {
	w       io.Writer
	stage   stage
	text    string
	animate bool

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
	done    bool
}

// startSpinner begins animating "<verb> <subject>..." on w. When w is not
// a terminal nothing is drawn.
func startSpinner(ctx context.Context, w io.Writer, st stage, subject string) *spinner {
	return newSpinner(ctx, w, st, subject, isTerminal(w))
}

func newSpinner(ctx context.Context, w io.Writer, st stage, subject string, animate bool) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		stage:   st,
		text:    st.verb() + " " + subject + "...",
		animate: animate,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	if animate {
		go s.run()
	} else {
		close(s.stopped)
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.text))
			s.mu.Unlock()
		}
	}
}

// stop ends the animation and clears its line. It is safe to call more
// than once.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.done = true
		s.mu.Unlock()
		s.cancel()
		<-s.stopped
		if s.animate {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.text)+2))
		}
	})
}

// fail stops the spinner and reports the stage as failed on w.
func (s *spinner) fail() {
	s.stop()
	fmt.Fprintln(s.w, statusLine(markError, s.stage.failed()))
}

// interrupted reports whether the command's context ended the spinner
// before stop was called.
func (s *spinner) interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Err() != nil && !s.done
}
