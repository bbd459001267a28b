package adapter

import (
	"sort"

	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/registry"
)

// Set maps context keys to adapters.
type Set struct {
	adapters map[string]Adapter
}

// NewSet creates a set from adapters. A later adapter for the same context
// replaces an earlier one.
func NewSet(adapters ...Adapter) *Set {
	s := &Set{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		s.Add(a)
	}
	return s
}

// Defaults creates a set with the built-in web and email adapters.
func Defaults(reg *registry.Registry, opts ...Option) *Set {
	return NewSet(NewWeb(reg, opts...), NewEmail(reg, opts...))
}

// Add registers a, replacing any adapter for the same context.
func (s *Set) Add(a Adapter) {
	s.adapters[a.Context()] = a
}

// Get returns the adapter for ctx.
func (s *Set) Get(ctx string) (Adapter, error) {
	a, ok := s.adapters[ctx]
	if !ok {
		return nil, errors.New(errors.ErrCodeAdapterNotFound, "no adapter for context %q (available: %v)", ctx, s.Contexts())
	}
	return a, nil
}

// Contexts returns the contexts with an adapter, sorted.
func (s *Set) Contexts() []string {
	out := make([]string, 0, len(s.adapters))
	for c := range s.adapters {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
