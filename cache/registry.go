package cache

import "sync"

// Registry tracks live stores so they can be enumerated and flushed together.
//
// Stores register themselves by reference when they are created; nothing is
// discovered by reflection.
type Registry struct {
	mu     sync.RWMutex
	stores []*Store
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns the process-wide registry that stores join unless
// configured otherwise.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds s to the registry. Registering the same store twice is a
// no-op.
func (r *Registry) Register(s *Store) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.stores {
		if existing == s {
			return
		}
	}
	r.stores = append(r.stores, s)
}

// Unregister removes s from the registry.
func (r *Registry) Unregister(s *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.stores {
		if existing == s {
			r.stores = append(r.stores[:i], r.stores[i+1:]...)
			return
		}
	}
}

// Stores returns the registered stores in registration order.
func (r *Registry) Stores() []*Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stores := make([]*Store, len(r.stores))
	copy(stores, r.stores)
	return stores
}

// Lookup returns the first registered store with the given name.
func (r *Registry) Lookup(name string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stores {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// FlushAll empties every registered store. Each store is flushed under its
// own lock; the registry lock is not held while flushing.
func (r *Registry) FlushAll() {
	for _, s := range r.Stores() {
		s.Flush()
	}
}

// FlushAll empties every store in the default registry.
func FlushAll() {
	defaultRegistry.FlushAll()
}
