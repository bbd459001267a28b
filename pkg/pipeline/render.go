package pipeline

import (
	"time"

	"github.com/matzehuels/blockpress/pkg/adapter"
	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/trusted"
)

// Render runs the uncached stages for validated opts: adapter output, then
// the trusted pass and the standalone envelope when requested.
func Render(set *adapter.Set, tr *trusted.Renderer, opts Options) (string, Stats, error) {
	var stats Stats
	a, err := set.Get(opts.Context)
	if err != nil {
		return "", stats, err
	}

	start := time.Now()
	html := a.GenerateHTML(opts.Tree, opts.Settings)
	stats.RenderTime = time.Since(start)

	if opts.Finalize {
		if tr == nil {
			return "", stats, errors.New(errors.ErrCodeUnsupported, "no trusted renderer configured")
		}
		start = time.Now()
		html = tr.Finalize(html, opts.Tree)
		stats.FinalizeTime = time.Since(start)
	}

	if opts.Standalone {
		web, ok := a.(*adapter.Web)
		if !ok {
			return "", stats, errors.New(errors.ErrCodeUnsupported, "context %q cannot produce standalone pages", opts.Context)
		}
		html = web.StandalonePage(html, opts.Settings)
	}

	stats.Bytes = len(html)
	return html, stats, nil
}

// Skip reasons.
const (
	SkipUnknown = "unknown"
	SkipContext = "context"
)

// Skip is a block the adapter will leave out.
type Skip struct {
	Block  block.Block
	Reason string
}

// Skipped lists the blocks in tree, nested ones included, that a renders
// as nothing: types without a generator for a's context and no composite
// fallback. Blocks without a type count as unknown.
func Skipped(reg *registry.Registry, a adapter.Adapter, tree block.Tree) []Skip {
	ctx := a.Context()
	var out []Skip
	_ = block.Walk(tree, func(b block.Block, _ int) error {
		_, res := reg.Resolve(b.Type, ctx)
		if res != registry.Resolved && a.HasFallback(b.Type) {
			return nil
		}
		switch res {
		case registry.UnknownType:
			out = append(out, Skip{Block: b, Reason: SkipUnknown})
			return block.SkipChildren
		case registry.UnsupportedContext:
			out = append(out, Skip{Block: b, Reason: SkipContext})
			return block.SkipChildren
		}
		return nil
	})
	return out
}
