// Package registry holds the catalogue of block types: their defaults,
// capabilities, and per-context generators.
//
// # Overview
//
// A [Registry] is built once at startup, filled with [Definition] values, and
// then shared read-only by every adapter and by the trusted pass. It is not a
// process-wide singleton; callers construct one and pass it where needed.
//
//	bus := hooks.New(logger)
//	reg := registry.New(bus, logger)
//	blocks.RegisterAll(reg)
//
//	gen, res := reg.Resolve("heading", registry.ContextEmail)
//	if res != registry.Resolved {
//	    // skip the block
//	}
//
// # Generator Slots
//
// Each definition carries a per-context map of generators plus one
// [Definition.Trusted] slot. A context generator either writes final markup
// directly (email) or emits a placeholder via [Deferred] that the trusted pass
// later finalizes with the same definition's defaults.
//
// # Lookup Failures
//
// Lookups never panic or return errors at render time. [Registry.Resolve]
// distinguishes an unknown type from a known type that does not render in
// the requested context, so callers can log the difference while emitting
// nothing in both cases.
package registry

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/hooks"
)

// Resolution is the outcome of a generator lookup.
type Resolution int

const (
	// Resolved means a generator was found.
	Resolved Resolution = iota
	// UnknownType means no definition is registered for the type.
	UnknownType
	// UnsupportedContext means the type exists but does not render in the
	// requested context.
	UnsupportedContext
)

// String returns a short name for logging.
func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case UnknownType:
		return "unknown-type"
	case UnsupportedContext:
		return "unsupported-context"
	}
	return fmt.Sprintf("resolution(%d)", int(r))
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the instance id generator used by
// [Registry.CreateInstance]. The default produces random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// Registry is the block type catalogue. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	order  []string
	bus    *hooks.Bus
	logger *log.Logger
	newID  func() string
}

// New creates an empty registry. bus may be nil; a nil logger discards
// diagnostics.
func New(bus *hooks.Bus, logger *log.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	r := &Registry{
		defs:   make(map[string]*Definition),
		bus:    bus,
		logger: logger,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bus returns the bus the registry notifies.
func (r *Registry) Bus() *hooks.Bus { return r.bus }

// Logger returns the registry's logger.
func (r *Registry) Logger() *log.Logger { return r.logger }

// Register stores def under its type, replacing any previous definition with
// the same type. Missing optional fields get defaults. A definition without a
// type or label, or with a malformed type, is rejected: the error is logged
// and returned, and the registry is left unchanged.
//
// Instances created from a replaced definition keep their props; only later
// calls to [Registry.CreateInstance] see the new defaults.
func (r *Registry) Register(def Definition) error {
	d := normalize(def)
	if d.Type == "" {
		err := errors.New(errors.ErrCodeInvalidDefinition, "block definition is missing a type (label %q)", d.Label)
		r.logger.Error("rejected block definition", "error", err)
		return err
	}
	if err := errors.ValidateBlockType(d.Type); err != nil {
		r.logger.Error("rejected block definition", "type", d.Type, "error", err)
		return err
	}
	if d.Label == "" {
		err := errors.New(errors.ErrCodeInvalidDefinition, "block definition %q is missing a label", d.Type)
		r.logger.Error("rejected block definition", "type", d.Type, "error", err)
		return err
	}

	r.mu.Lock()
	_, replaced := r.defs[d.Type]
	r.defs[d.Type] = d
	if !replaced {
		r.order = append(r.order, d.Type)
	}
	r.mu.Unlock()

	r.logger.Debug("registered block type", "type", d.Type, "contexts", d.Contexts, "replaced", replaced)
	r.bus.DoAction(hooks.Registered, d)
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// built-in definitions registered at startup.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Get returns the definition for typ. The returned value is shared and must
// not be modified.
func (r *Registry) Get(typ string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[typ]
	return d, ok
}

// All returns every definition in registration order.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.defs[t])
	}
	return out
}

// ForContext returns the definitions allowed in ctx, in registration order,
// after the context-scoped and general block list filters have run.
func (r *Registry) ForContext(ctx string) []*Definition {
	var out []*Definition
	for _, d := range r.All() {
		if d.AllowsContext(ctx) {
			out = append(out, d)
		}
	}
	out = hooks.Apply(r.bus, hooks.ContextBlocks(ctx), out, ctx)
	out = hooks.Apply(r.bus, hooks.Blocks, out, ctx)
	return out
}

// Generator returns the generator for typ in ctx. Exact context matches win
// over the wildcard generator.
func (r *Registry) Generator(typ, ctx string) (Generator, bool) {
	g, res := r.Resolve(typ, ctx)
	return g, res == Resolved
}

// Resolve is like Generator but reports why a lookup failed.
func (r *Registry) Resolve(typ, ctx string) (Generator, Resolution) {
	d, ok := r.Get(typ)
	if !ok {
		return nil, UnknownType
	}
	if !d.AllowsContext(ctx) {
		return nil, UnsupportedContext
	}
	g, ok := d.Generator(ctx)
	if !ok {
		return nil, UnsupportedContext
	}
	return g, Resolved
}

// CreateInstance returns a new block of type typ with a fresh id and props
// built from a deep copy of the type's defaults overlaid with overrides.
func (r *Registry) CreateInstance(typ string, overrides block.Props) (block.Block, error) {
	d, ok := r.Get(typ)
	if !ok {
		return block.Block{}, errors.New(errors.ErrCodeBlockTypeNotFound, "unknown block type %q", typ)
	}
	return block.Block{
		ID:    r.newID(),
		Type:  d.Type,
		Props: block.Merge(d.Defaults, overrides),
	}, nil
}

// ResolveProps returns the type's defaults overlaid with props. Unknown types
// return a copy of props.
func (r *Registry) ResolveProps(typ string, props block.Props) block.Props {
	d, ok := r.Get(typ)
	if !ok {
		return block.Merge(nil, props)
	}
	return block.Merge(d.Defaults, props)
}

// Validate runs the type's validation predicate. Unknown types are invalid;
// types without a predicate accept everything. A panicking predicate counts
// as a failed validation.
func (r *Registry) Validate(typ string, props block.Props) (ok bool) {
	d, found := r.Get(typ)
	if !found {
		return false
	}
	if d.Validate == nil {
		return true
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("block validation panicked", "type", typ, "panic", p)
			ok = false
		}
	}()
	return d.Validate(props)
}

// Types returns every registered type key, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for t := range r.defs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Categories returns the distinct categories in use, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	for _, d := range r.All() {
		seen[d.Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// IsVolatile reports whether a block in tree renders in ctx with a type
// whose output depends on the time of rendering. Volatile types that do
// not support ctx are ignored. Children of unresolved blocks are still
// inspected, since composite fallbacks may render them.
func (r *Registry) IsVolatile(tree block.Tree, ctx string) bool {
	volatile := false
	_ = block.Walk(tree, func(b block.Block, _ int) error {
		if d, ok := r.Get(b.Type); ok && d.Volatile && d.AllowsContext(ctx) {
			volatile = true
			return block.SkipChildren
		}
		return nil
	})
	return volatile
}
