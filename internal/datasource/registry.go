package datasource

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of fundamentals sources keyed by id.
// The priority list orders fetching and field reconciliation; sources
// registered but absent from the list are never consulted.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]Source
	priority []string
}

// NewRegistry creates a registry with the given priority order.
func NewRegistry(priority []string) *Registry {
	p := make([]string, len(priority))
	copy(p, priority)
	return &Registry{
		sources:  make(map[string]Source),
		priority: p,
	}
}

// Register adds a source. Duplicate registrations overwrite the previous entry.
func (r *Registry) Register(s Source) error {
	if s.Name() == "" {
		return fmt.Errorf("source name cannot be empty")
	}
	r.mu.Lock()
	r.sources[s.Name()] = s
	r.mu.Unlock()
	return nil
}

// Get returns a source by id.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	return s, ok
}

// Priority returns the configured priority order.
func (r *Registry) Priority() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.priority))
	copy(out, r.priority)
	return out
}

// Ordered returns the registered sources in priority order, skipping ids
// with no registered source.
func (r *Registry) Ordered() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, 0, len(r.priority))
	for _, name := range r.priority {
		if s, ok := r.sources[name]; ok {
			out = append(out, s)
		}
	}
	return out
}
