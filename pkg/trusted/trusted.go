// Package trusted implements the second rendering pass for the page context.
//
// The page adapter emits placeholders for blocks whose markup involves user
// text, links or media. [Renderer.Finalize] finds those placeholders in a
// fragment and replaces each one with the output of its type's Trusted
// generator, which escapes text, allow-lists URLs and computes anchors.
//
// Everything that is not a placeholder passes through byte for byte.
package trusted

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	xhtml "golang.org/x/net/html"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/hooks"
	"github.com/matzehuels/blockpress/pkg/placeholder"
	"github.com/matzehuels/blockpress/pkg/registry"
)

// Renderer finalizes placeholders using a registry's Trusted generators.
type Renderer struct {
	reg    *registry.Registry
	bus    *hooks.Bus
	logger *log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a renderer. It shares the registry's bus and, unless
// overridden, its logger.
func New(reg *registry.Registry, opts ...Option) *Renderer {
	r := &Renderer{reg: reg, bus: reg.Bus(), logger: reg.Logger()}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("pass", "trusted")
	return r
}

// Finalize replaces every placeholder in fragment. doc is the document the
// fragment was rendered from; blocks that describe other blocks fall back to
// it when their payload lacks the data they need. It may be nil.
func (r *Renderer) Finalize(fragment string, doc block.Tree) string {
	if !strings.Contains(fragment, placeholder.AttrType) {
		return fragment
	}
	z := xhtml.NewTokenizer(strings.NewReader(fragment))
	var out strings.Builder
	out.Grow(len(fragment))
	r.finalize(z, &out, doc, -1)
	return out.String()
}

// finalize copies tokens from z to out until the tokenizer ends or, when
// stopDepth is non-negative, until the div that closes the current
// placeholder. It returns false if input ended first.
func (r *Renderer) finalize(z *xhtml.Tokenizer, out *strings.Builder, doc block.Tree, stopDepth int) bool {
	divDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return false

		case xhtml.StartTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			if p, ok := placeholder.FromToken(tok); ok {
				var inner strings.Builder
				r.finalize(z, &inner, doc, 0)
				out.WriteString(r.Block(p, inner.String(), doc))
				continue
			}
			if tok.Data == placeholder.Tag {
				divDepth++
			}
			out.WriteString(raw)

		case xhtml.SelfClosingTagToken:
			raw := string(z.Raw())
			if p, ok := placeholder.FromToken(z.Token()); ok {
				out.WriteString(r.Block(p, "", doc))
				continue
			}
			out.WriteString(raw)

		case xhtml.EndTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			if string(name) == placeholder.Tag {
				if stopDepth >= 0 && divDepth == stopDepth {
					return true
				}
				divDepth--
			}
			out.WriteString(raw)

		default:
			out.Write(z.Raw())
		}
	}
}

// Block renders one placeholder whose children are already finalized.
// Unknown types and types without a Trusted generator yield their inner
// markup alone.
func (r *Renderer) Block(p placeholder.Placeholder, inner string, doc block.Tree) string {
	def, ok := r.reg.Get(p.Type)
	if !ok {
		r.logger.Warn("unknown block type in placeholder, skipped", "type", p.Type, "id", p.ID)
		return inner
	}
	if def.Trusted == nil {
		r.logger.Warn("block type has no trusted generator", "type", p.Type, "id", p.ID)
		return inner
	}

	b := p.Block()
	props := block.Merge(def.Defaults, p.Props)
	opts := registry.Options{
		Context:    registry.ContextPage,
		Block:      b,
		Definition: def,
		Document:   doc,
		Inner:      inner,
		Bus:        r.bus,
		Logger:     r.logger,

		ResolveProps: r.reg.ResolveProps,
	}
	html := r.call(def.Trusted, props, opts)
	return hooks.Apply(r.bus, hooks.TrustedHTML, html, b)
}

func (r *Renderer) call(gen registry.Generator, props block.Props, opts registry.Options) (html string) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("trusted generator panicked", "type", opts.Block.Type, "id", opts.Block.ID, "panic", fmt.Sprint(p))
			html = opts.Inner
		}
	}()
	return gen(props, opts)
}
