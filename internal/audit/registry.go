// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

import (
	"sort"
)

// Registry maps handler names to Handler implementations. It is populated
// once at construction and read-only afterwards, so lookups are safe from
// any number of invocation goroutines without locking.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a frozen registry from the given map. The map is
// copied; later mutation by the caller does not affect the registry.
func NewRegistry(handlers map[string]Handler) *Registry {
	m := make(map[string]Handler, len(handlers))
	for name, h := range handlers {
		m[name] = h
	}
	return &Registry{handlers: m}
}

// Lookup returns the handler registered under name. A missing name is not
// an error at this layer; the dispatcher records it as an unknown-handler
// failure for that slot.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered handler names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	return len(r.handlers)
}
