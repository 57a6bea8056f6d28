// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package courier

import (
	"fmt"
	"maps"
	"slices"
)

// A Binding associates a command name with the handler that services it.
type Binding struct {
	Name    string
	Handler Handler
}

// Bind constructs a binding of name to h.
func Bind(name string, h Handler) Binding { return Binding{Name: name, Handler: h} }

// A Registry is an immutable mapping from command names to handlers. It is
// fully populated by NewRegistry before use and never modified afterward, so
// a single registry may be shared by reference across arbitrarily many
// concurrent dispatches without locking.
//
// Command names are case-sensitive and compared exactly.
type Registry struct {
	m map[string]Handler
}

// NewRegistry constructs a registry from the given bindings. The handler set
// is a fixed property of the program, so a bad binding is a programming
// error: NewRegistry panics if a name is empty or duplicated, or if a
// handler is nil.
func NewRegistry(bindings ...Binding) *Registry {
	m := make(map[string]Handler, len(bindings))
	for _, b := range bindings {
		if b.Name == "" {
			panic("registry: empty command name")
		} else if b.Handler == nil {
			panic(fmt.Sprintf("registry: nil handler for %q", b.Name))
		} else if _, ok := m[b.Name]; ok {
			panic(fmt.Sprintf("registry: duplicate command %q", b.Name))
		}
		m[b.Name] = b.Handler
	}
	return &Registry{m: m}
}

// Lookup reports whether name is registered, and if so returns its handler.
// Lookup never blocks and is safe to call concurrently from any number of
// goroutines sharing r.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.m[name]
	return h, ok
}

// Len reports the number of registered commands.
func (r *Registry) Len() int { return len(r.m) }

// Names returns the registered command names in lexicographic order.
func (r *Registry) Names() []string { return slices.Sorted(maps.Keys(r.m)) }
