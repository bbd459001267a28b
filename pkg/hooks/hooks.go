// Package hooks provides the named extension points through which the
// rendering core can be observed and rewritten.
//
// # Overview
//
// A [Bus] holds two kinds of observers, keyed by hook name:
//
//   - Actions are notifications. They receive arguments and return nothing
//     but an error, which is logged and otherwise ignored.
//   - Filters are transformations. Each filter receives the current value and
//     returns a replacement, which becomes the input of the next filter.
//
// Observers run in ascending [Priority] order; observers with equal priority
// run in registration order. A failing observer (one that returns an error or
// panics) never stops the others: for filters, the value from before the
// failing observer is carried forward.
//
// # Usage
//
//	bus := hooks.New(logger)
//	bus.AddFilter(hooks.BlockHTML("heading"), func(v any, args ...any) (any, error) {
//	    return strings.ToUpper(v.(string)), nil
//	})
//	html := hooks.Apply(bus, hooks.BlockHTML("heading"), html, blk, ctx)
//
// A nil *Bus is valid and behaves like a bus with no observers.
package hooks

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultPriority is the priority observers get when none is given.
const DefaultPriority = 10

// Action observes a named event.
type Action func(args ...any) error

// Filter transforms a value flowing through a named hook.
type Filter func(value any, args ...any) (any, error)

// Option configures a single registration.
type Option func(*registration)

// Priority sets the ordering key of an observer. Lower values run first.
func Priority(p int) Option {
	return func(r *registration) { r.priority = p }
}

type registration struct {
	seq      uint64
	priority int
	action   Action
	filter   Filter
}

// Bus is a registry of actions and filters. It is safe for concurrent use.
type Bus struct {
	mu      sync.RWMutex
	seq     uint64
	actions map[string][]*registration
	filters map[string][]*registration
	logger  *log.Logger
}

// New creates an empty bus. A nil logger discards diagnostics.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Bus{
		actions: make(map[string][]*registration),
		filters: make(map[string][]*registration),
		logger:  logger,
	}
}

// AddAction registers fn for the named action. The returned function
// removes the registration.
func (b *Bus) AddAction(name string, fn Action, opts ...Option) (remove func()) {
	r := &registration{priority: DefaultPriority, action: fn}
	return b.add(b.actions, name, r, opts)
}

// AddFilter registers fn for the named filter. The returned function
// removes the registration.
func (b *Bus) AddFilter(name string, fn Filter, opts ...Option) (remove func()) {
	r := &registration{priority: DefaultPriority, filter: fn}
	return b.add(b.filters, name, r, opts)
}

func (b *Bus) add(m map[string][]*registration, name string, r *registration, opts []Option) func() {
	for _, opt := range opts {
		opt(r)
	}

	b.mu.Lock()
	b.seq++
	r.seq = b.seq
	list := append(m[name], r)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority == list[j].priority {
			return list[i].seq < list[j].seq
		}
		return list[i].priority < list[j].priority
	})
	m[name] = list
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := m[name]
		for i, x := range list {
			if x == r {
				m[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// DoAction notifies every observer of the named action.
func (b *Bus) DoAction(name string, args ...any) {
	if b == nil {
		return
	}
	for _, r := range b.snapshot(b.actions, name) {
		if err := b.runAction(name, r, args); err != nil {
			b.logger.Warn("action observer failed", "hook", name, "error", err)
		}
	}
}

// ApplyFilters threads value through every observer of the named filter and
// returns the result.
func (b *Bus) ApplyFilters(name string, value any, args ...any) any {
	if b == nil {
		return value
	}
	for _, r := range b.snapshot(b.filters, name) {
		next, err := b.runFilter(name, r, value, args)
		if err != nil {
			b.logger.Warn("filter observer failed", "hook", name, "error", err)
			continue
		}
		value = next
	}
	return value
}

// HasAction reports whether any observer is registered for the named action.
func (b *Bus) HasAction(name string) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.actions[name]) > 0
}

// HasFilter reports whether any observer is registered for the named filter.
func (b *Bus) HasFilter(name string) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.filters[name]) > 0
}

// RemoveAll drops every action and filter registered under name.
func (b *Bus) RemoveAll(name string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.actions, name)
	delete(b.filters, name)
}

// Names returns the hook names that currently have observers, sorted.
func (b *Bus) Names() []string {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	seen := make(map[string]bool)
	for n, l := range b.actions {
		if len(l) > 0 {
			seen[n] = true
		}
	}
	for n, l := range b.filters {
		if len(l) > 0 {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (b *Bus) snapshot(m map[string][]*registration, name string) []*registration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	list := m[name]
	if len(list) == 0 {
		return nil
	}
	return append([]*registration(nil), list...)
}

func (b *Bus) runAction(name string, r *registration, args []any) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in action %s: %v", name, p)
		}
	}()
	return r.action(args...)
}

func (b *Bus) runFilter(name string, r *registration, value any, args []any) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("panic in filter %s: %v", name, p)
		}
	}()
	return r.filter(value, args...)
}

// Apply runs the named filter over a typed value. If an observer returns a
// value of a different type, that result is discarded and the previous value
// is carried forward, as if the observer had failed.
func Apply[T any](b *Bus, name string, value T, args ...any) T {
	if b == nil {
		return value
	}
	for _, r := range b.snapshot(b.filters, name) {
		next, err := b.runFilter(name, r, value, args)
		if err != nil {
			b.logger.Warn("filter observer failed", "hook", name, "error", err)
			continue
		}
		typed, ok := next.(T)
		if !ok {
			b.logger.Warn("filter observer returned wrong type", "hook", name,
				"want", fmt.Sprintf("%T", value), "got", fmt.Sprintf("%T", next))
			continue
		}
		value = typed
	}
	return value
}
