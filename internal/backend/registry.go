package backend

import (
	"context"
	"fmt"
	"strings"
)

// Info describes a registered backend and its current availability.
type Info struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Registry holds backends in fixed priority order. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	backends []Backend
	byName   map[string]int
}

// NewRegistry creates a registry from backends, highest priority first.
// Names must be non-empty and unique regardless of case.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{
		backends: make([]Backend, 0, len(backends)),
		byName:   make(map[string]int, len(backends)),
	}
	for _, b := range backends {
		name := strings.ToLower(b.Name())
		if name == "" {
			return nil, fmt.Errorf("backend at position %d has no name", len(r.backends))
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("backend %q registered twice", name)
		}
		r.byName[name] = len(r.backends)
		r.backends = append(r.backends, b)
	}
	return r, nil
}

// All returns every registered backend in priority order.
func (r *Registry) All() []Backend {
	out := make([]Backend, len(r.backends))
	copy(out, r.backends)
	return out
}

// Lookup returns the backend whose name matches case-insensitively.
func (r *Registry) Lookup(name string) (Backend, bool) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.backends[i], true
}

// Contains reports whether b itself is registered.
func (r *Registry) Contains(b Backend) bool {
	return r.Priority(b) >= 0
}

// Priority returns the position of b in the registry, or -1 when b is not
// registered.
func (r *Registry) Priority(b Backend) int {
	if b == nil {
		return -1
	}
	i, ok := r.byName[strings.ToLower(b.Name())]
	if !ok || r.backends[i] != b {
		return -1
	}
	return i
}

// Available probes every backend and returns those that pass, preserving
// priority order. It is recomputed on every call.
func (r *Registry) Available(ctx context.Context) []Backend {
	var out []Backend
	for _, b := range r.backends {
		if b.Probe(ctx) == nil {
			out = append(out, b)
		}
	}
	return out
}

// List probes every backend and reports its status, in priority order.
func (r *Registry) List(ctx context.Context) []Info {
	infos := make([]Info, 0, len(r.backends))
	for i, b := range r.backends {
		info := Info{Name: b.Name(), Priority: i, Available: true}
		if err := b.Probe(ctx); err != nil {
			info.Available = false
			info.Reason = err.Error()
		}
		infos = append(infos, info)
	}
	return infos
}
