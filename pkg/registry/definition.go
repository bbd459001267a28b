package registry

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/hooks"
)

// Rendering contexts known to the built-in adapters. Any other string is a
// valid context as long as an adapter handles it.
const (
	ContextEmail = "email"
	ContextPage  = "page"

	// ContextAll is the wildcard: in a definition's context list it allows
	// every context, and as a generator key it serves every context without
	// a more specific generator.
	ContextAll = "all"
)

// Default values applied by [Registry.Register] to missing fields.
const (
	DefaultCategory = "common"
	DefaultIcon     = "block-default"
)

// Generator produces the markup for one block in one context.
//
// props are the block's resolved props (type defaults merged with the
// instance's own props). Generators must not modify props and must return
// the same output for the same input. An empty string means "render
// nothing".
type Generator func(props block.Props, opts Options) string

// Options carries everything besides props that a generator may consult.
type Options struct {
	// Context is the rendering context ("email", "page", ...).
	Context string

	// Block is the instance being rendered, with its unresolved props.
	Block block.Block

	// Definition is the registry entry for Block's type.
	Definition *Definition

	// Siblings is the sequence Block belongs to.
	Siblings block.Tree

	// Document is the complete tree being rendered. Blocks that describe
	// other blocks (a table of contents) read it; none may modify it.
	Document block.Tree

	// Settings are the adapter's merged render settings.
	Settings block.Settings

	// RenderChildren renders a nested sequence with the same adapter. It is
	// nil in the trusted pass, where children are already rendered.
	RenderChildren func(block.Tree) string

	// Inner is the already-finalized markup found inside a placeholder.
	// Only the trusted pass sets it.
	Inner string

	// Bus lets generators run filters such as [hooks.AssetURL].
	Bus *hooks.Bus

	// ResolveProps merges props with the registered defaults of typ. Blocks
	// that describe other blocks use it to see them as they will render.
	// It may be nil.
	ResolveProps func(typ string, props block.Props) block.Props

	// Logger receives generator diagnostics.
	Logger *log.Logger
}

// Capabilities are the editing features a block type supports.
//
// Duplication and removal are allowed unless a type opts out, so the zero
// value describes an ordinary content block.
type Capabilities struct {
	Alignment bool `json:"alignment" yaml:"alignment"`
	Spacing   bool `json:"spacing" yaml:"spacing"`
	Color     bool `json:"color" yaml:"color"`
	Nesting   bool `json:"nesting" yaml:"nesting"`

	// Unique forbids duplicating an instance.
	Unique bool `json:"unique,omitempty" yaml:"unique,omitempty"`

	// Locked forbids removing an instance.
	Locked bool `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// Duplication reports whether instances may be duplicated.
func (c Capabilities) Duplication() bool { return !c.Unique }

// Removal reports whether instances may be removed.
func (c Capabilities) Removal() bool { return !c.Locked }

// Flags returns every capability by name.
func (c Capabilities) Flags() map[string]bool {
	return map[string]bool{
		"alignment":   c.Alignment,
		"spacing":     c.Spacing,
		"color":       c.Color,
		"nesting":     c.Nesting,
		"duplication": c.Duplication(),
		"removal":     c.Removal(),
	}
}

// Definition describes one block type.
type Definition struct {
	Type        string
	Label       string
	Category    string
	Description string
	Icon        string
	Keywords    []string

	// Contexts lists the contexts the type may render in. A list containing
	// [ContextAll] (or an empty list) allows every context.
	Contexts []string

	// Defaults are the props every instance starts from.
	Defaults block.Props

	Supports Capabilities

	// Generators maps a context (or [ContextAll]) to its generator.
	Generators map[string]Generator

	// Trusted finalizes a placeholder emitted by a deferred generator. It
	// receives the placeholder's props merged with Defaults.
	Trusted Generator

	// Validate optionally checks an instance's props.
	Validate func(block.Props) bool

	// Volatile marks types whose output depends on the wall clock or other
	// state outside their props. Documents containing them are not cached.
	Volatile bool
}

// AllowsContext reports whether the definition may render in ctx.
func (d *Definition) AllowsContext(ctx string) bool {
	if len(d.Contexts) == 0 {
		return true
	}
	for _, c := range d.Contexts {
		if c == ContextAll || c == ctx {
			return true
		}
	}
	return false
}

// Generator returns the generator for ctx: an exact match first, then the
// wildcard generator. It does not consult the allowed contexts.
func (d *Definition) Generator(ctx string) (Generator, bool) {
	if g, ok := d.Generators[ctx]; ok && g != nil {
		return g, true
	}
	if g, ok := d.Generators[ContextAll]; ok && g != nil {
		return g, true
	}
	return nil, false
}

// ContextNames returns the contexts the definition has generators for,
// sorted, with the wildcard last.
func (d *Definition) ContextNames() []string {
	names := make([]string, 0, len(d.Generators))
	wildcard := false
	for c, g := range d.Generators {
		if g == nil {
			continue
		}
		if c == ContextAll {
			wildcard = true
			continue
		}
		names = append(names, c)
	}
	sort.Strings(names)
	if wildcard {
		names = append(names, ContextAll)
	}
	return names
}

// normalize fills missing fields with documented defaults and copies every
// mutable field, so the stored definition shares nothing with the caller.
func normalize(def Definition) *Definition {
	d := def
	d.Type = strings.TrimSpace(d.Type)
	d.Label = strings.TrimSpace(d.Label)
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	if d.Icon == "" {
		d.Icon = DefaultIcon
	}
	d.Keywords = append([]string(nil), def.Keywords...)
	d.Contexts = normalizeContexts(def.Contexts)
	d.Defaults = block.DeepCopy(def.Defaults)
	if d.Defaults == nil {
		d.Defaults = block.Props{}
	}
	d.Generators = make(map[string]Generator, len(def.Generators))
	for c, g := range def.Generators {
		if g != nil {
			d.Generators[strings.ToLower(strings.TrimSpace(c))] = g
		}
	}
	return &d
}

func normalizeContexts(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		if c == ContextAll {
			return []string{ContextAll}
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return []string{ContextAll}
	}
	return out
}
