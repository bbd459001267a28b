// Package adapter turns block trees into final markup for one rendering
// context.
//
// # Overview
//
// An [Adapter] owns the orchestration of a render: it merges settings with
// its context defaults, walks the tree, asks the registry for each block's
// generator, runs the block markup filters, and wraps the result in a
// context envelope. Block content itself always comes from the registry.
//
// Two adapters are built in:
//
//   - [Web] renders the "page" context: a fragment inside a content
//     container, where most blocks are placeholders for the trusted pass.
//     [Web.StandalonePage] wraps a fragment in a complete document for
//     previews and exports.
//   - [Email] renders the "email" context: a complete, self-contained
//     document with table layout and inline styles.
//
// # Failure Policy
//
// Adapters never fail a document because of one block. Unknown types,
// types without a generator for the context, and panicking generators all
// produce empty output for that block and a log line.
package adapter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/hooks"
	"github.com/matzehuels/blockpress/pkg/registry"
)

// MaxDepth bounds how deeply nested sequences are rendered.
const MaxDepth = 32

// Adapter renders block trees for one context.
type Adapter interface {
	// Context returns the context key the adapter renders ("email", "page").
	Context() string

	// DefaultSettings returns a fresh copy of the context defaults.
	DefaultSettings() block.Settings

	// GenerateHTML renders a complete tree. settings are merged over the
	// context defaults.
	GenerateHTML(tree block.Tree, settings block.Settings) string

	// GenerateBlockHTML renders a single block within frame.
	GenerateBlockHTML(b block.Block, frame Frame) string

	// WrapOutput places rendered content in the context envelope.
	WrapOutput(content string, settings block.Settings) string

	// HasFallback reports whether the adapter renders typ without a
	// registered generator (the composite section and column).
	HasFallback(typ string) bool
}

// Frame is the surrounding state a block is rendered in.
type Frame struct {
	// Document is the complete tree being rendered.
	Document block.Tree
	// Siblings is the sequence containing the block.
	Siblings block.Tree
	// Settings are the merged render settings.
	Settings block.Settings
	// Depth is 0 for top-level blocks.
	Depth int
}

// Option configures an adapter.
type Option func(*engine)

// WithLogger sets the logger for render diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBus sets the hook bus. Adapters without a bus run no hooks.
func WithBus(b *hooks.Bus) Option {
	return func(e *engine) { e.bus = b }
}

// WithDefaults overlays extra context defaults, for example values read
// from a configuration file.
func WithDefaults(s block.Settings) Option {
	return func(e *engine) { e.defaults = s.Merge(e.defaults) }
}

// engine implements the orchestration shared by every adapter. Concrete
// adapters supply the envelope, an optional per-block decoration, and the
// composite fallbacks.
type engine struct {
	context   string
	reg       *registry.Registry
	bus       *hooks.Bus
	logger    *log.Logger
	defaults  block.Settings
	fallbacks map[string]registry.Generator

	// wrap builds the context envelope.
	wrap func(content string, s block.Settings) string
	// row wraps each non-empty top-level block.
	row func(html string, b block.Block, s block.Settings) string
	// decorate post-processes each non-empty block before filters run.
	decorate func(html string, b block.Block, props block.Props) string
}

func newEngine(ctx string, reg *registry.Registry, defaults block.Settings, opts []Option) *engine {
	e := &engine{
		context:  ctx,
		reg:      reg,
		bus:      reg.Bus(),
		logger:   reg.Logger(),
		defaults: defaults,
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("context", ctx)
	return e
}

// Context returns the context key.
func (e *engine) Context() string { return e.context }

// DefaultSettings returns a copy of the context defaults.
func (e *engine) DefaultSettings() block.Settings {
	return block.Settings(block.DeepCopy(block.Props(e.defaults)))
}

// WrapOutput places content in the context envelope.
func (e *engine) WrapOutput(content string, settings block.Settings) string {
	return e.wrap(content, settings.Merge(e.defaults))
}

// GenerateHTML renders tree and wraps it.
func (e *engine) GenerateHTML(tree block.Tree, settings block.Settings) string {
	s := settings.Merge(e.defaults)
	e.bus.DoAction(hooks.BeforeGenerate, tree, e.context)

	frame := Frame{Document: tree, Siblings: tree, Settings: s}
	var b strings.Builder
	for _, blk := range tree {
		html := e.GenerateBlockHTML(blk, frame)
		if html == "" {
			continue
		}
		if e.row != nil {
			html = e.row(html, blk, s)
		}
		b.WriteString(html)
	}

	out := e.wrap(b.String(), s)
	out = hooks.Apply(e.bus, hooks.Generated, out, tree, s, e.context)
	e.bus.DoAction(hooks.AfterGenerate, tree, e.context, out)
	return out
}

// HasFallback reports whether typ has a composite fallback.
func (e *engine) HasFallback(typ string) bool {
	_, ok := e.fallbacks[typ]
	return ok
}

// GenerateBlockHTML renders one block, applying fallbacks and filters.
func (e *engine) GenerateBlockHTML(b block.Block, frame Frame) string {
	if frame.Depth > MaxDepth {
		e.logger.Warn("block nested too deeply, skipped", "type", b.Type, "id", b.ID, "depth", frame.Depth)
		return ""
	}

	def, _ := e.reg.Get(b.Type)
	gen, res := e.reg.Resolve(b.Type, e.context)
	if res != registry.Resolved {
		fb, ok := e.fallbacks[b.Type]
		if !ok {
			e.diagnose(b, res)
			return ""
		}
		e.logger.Debug("using composite fallback", "type", b.Type, "id", b.ID, "reason", res)
		gen = fb
	}

	var props block.Props
	if def != nil {
		props = block.Merge(def.Defaults, b.Props)
	} else {
		props = block.Merge(nil, b.Props)
	}

	opts := registry.Options{
		Context:    e.context,
		Block:      b,
		Definition: def,
		Siblings:   frame.Siblings,
		Document:   frame.Document,
		Settings:   frame.Settings,
		Bus:        e.bus,
		Logger:     e.logger,

		ResolveProps: e.reg.ResolveProps,
	}
	opts.RenderChildren = func(kids block.Tree) string {
		child := Frame{Document: frame.Document, Siblings: kids, Settings: frame.Settings, Depth: frame.Depth + 1}
		var sb strings.Builder
		for _, k := range kids {
			sb.WriteString(e.GenerateBlockHTML(k, child))
		}
		return sb.String()
	}

	html := e.call(gen, props, opts)
	if html != "" && e.decorate != nil {
		html = e.decorate(html, b, props)
	}

	html = hooks.Apply(e.bus, hooks.BlockHTMLAll, html, b, e.context)
	html = hooks.Apply(e.bus, hooks.BlockHTML(b.Type), html, b, e.context)
	if def != nil {
		html = hooks.Apply(e.bus, hooks.CategoryHTML(def.Category), html, b, e.context)
	}
	return html
}

func (e *engine) call(gen registry.Generator, props block.Props, opts registry.Options) (html string) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("block generator panicked", "type", opts.Block.Type, "id", opts.Block.ID, "panic", fmt.Sprint(p))
			html = ""
		}
	}()
	return gen(props, opts)
}

func (e *engine) diagnose(b block.Block, res registry.Resolution) {
	switch res {
	case registry.UnknownType:
		e.logger.Warn("skipping block", "type", b.Type, "id", b.ID, "reason", res)
	case registry.UnsupportedContext:
		e.logger.Info("skipping block", "type", b.Type, "id", b.ID, "reason", res, "context", e.context)
	}
}
