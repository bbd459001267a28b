// Package pipeline runs the render flow shared by the CLI and the HTTP API.
//
// A run takes a block tree through three stages:
//
//  1. Render: the context adapter turns the tree into markup
//  2. Finalize (pages only): the trusted pass replaces placeholders
//  3. Standalone (pages only): the fragment is wrapped in a full document
//
// Results are cached by a hash of everything that affects the output.
// Trees containing a volatile block type, such as a countdown, always
// render fresh.
//
// # Usage
//
//	runner := pipeline.NewRunner(reg, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Context:  registry.ContextPage,
//	    Tree:     tree,
//	    Finalize: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.HTML)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/cache"
	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/registry"
)

// DefaultContext is the context rendered when none is given.
const DefaultContext = registry.ContextEmail

// Options configures one pipeline run. It is the request body of the HTTP
// render endpoint.
type Options struct {
	Context  string         `json:"context"`
	Tree     block.Tree     `json:"blocks"`
	Settings block.Settings `json:"settings,omitempty"`

	// Finalize runs the trusted pass over page output.
	Finalize bool `json:"finalize,omitempty"`
	// Standalone wraps page output in a complete HTML document.
	Standalone bool `json:"standalone,omitempty"`
	// Refresh ignores cached output.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of a run.
type Result struct {
	HTML     string `json:"html"`
	Context  string `json:"context"`
	TreeHash string `json:"treeHash"`
	Stats    Stats  `json:"stats"`
	// CacheHit reports that HTML came from the cache.
	CacheHit bool `json:"cacheHit"`
	// Volatile reports that the tree holds a block whose output depends on
	// the time of rendering, so it was neither read from nor written to the
	// cache.
	Volatile bool `json:"volatile"`
}

// Stats describes a run.
type Stats struct {
	Blocks       int           `json:"blocks"`
	Skipped      int           `json:"skipped"`
	Bytes        int           `json:"bytes"`
	RenderTime   time.Duration `json:"renderTime"`
	FinalizeTime time.Duration `json:"finalizeTime,omitempty"`
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent. The tree itself is not validated: blocks without a type are
// skipped when rendering and other structural problems are only logged.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Context == "" {
		o.Context = DefaultContext
	}
	if (o.Finalize || o.Standalone) && o.Context != registry.ContextPage {
		return errors.New(errors.ErrCodeInvalidInput, "finalize and standalone apply to the %q context only, got %q", registry.ContextPage, o.Context)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// RenderKeyOpts returns the cache key options for o.
func (o *Options) RenderKeyOpts(registryHash string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Context:      o.Context,
		Settings:     o.Settings,
		Finalize:     o.Finalize,
		Standalone:   o.Standalone,
		RegistryHash: registryHash,
	}
}
