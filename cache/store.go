package cache

import (
	"container/list"
	"sync"
)

// Store is a bounded key/value store with first-in, first-out eviction.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use. One mutex guards
//     both the entry map and the insertion order.
//   - Eviction: when an insert pushes the store past its capacity, the entry
//     inserted earliest is removed. Reads never change that order, and
//     overwriting a key keeps its original position.
//   - Producers passed to FetchOrCompute run outside the lock. Two callers
//     missing the same key may both compute; the first to store wins and the
//     other caller receives the stored value.
type Store struct {
	name     string
	capacity int
	onEvict  func(key string, value any)

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is the oldest insertion
	stats   Stats
}

type storeEntry struct {
	key   string
	value any
}

// Stats is a point-in-time snapshot of a store's counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Sets      uint64
	Evictions uint64
	Flushes   uint64
	Len       int
	Capacity  int
}

// HitRatio returns hits over total lookups, or 0 when nothing was looked up.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	registry *Registry
	onEvict  func(key string, value any)
}

// WithRegistry registers the store with r instead of the default registry.
// A nil registry leaves the store unregistered.
func WithRegistry(r *Registry) StoreOption {
	return func(c *storeConfig) {
		c.registry = r
	}
}

// WithEvictionHook sets a callback invoked, outside the store lock, for each
// entry removed by the capacity policy. Flush does not call it.
func WithEvictionHook(fn func(key string, value any)) StoreOption {
	return func(c *storeConfig) {
		c.onEvict = fn
	}
}

// NewStore creates a store holding at most capacity entries. A capacity of
// zero selects DefaultCapacity. The store registers itself with the default
// registry unless WithRegistry says otherwise.
func NewStore(name string, capacity int, opts ...StoreOption) (*Store, error) {
	if name == "" {
		return nil, ErrMissingName
	}
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	cfg := storeConfig{registry: defaultRegistry}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		name:     name,
		capacity: capacity,
		onEvict:  cfg.onEvict,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
	if cfg.registry != nil {
		cfg.registry.Register(s)
	}
	return s, nil
}

// Name returns the store's name.
func (s *Store) Name() string {
	return s.name
}

// Cap returns the fixed capacity of the store.
func (s *Store) Cap() int {
	return s.capacity
}

// Len returns the number of entries currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get returns the value stored under key. A hit does not affect eviction
// order.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		s.stats.Misses++
		return nil, false
	}
	s.stats.Hits++
	return elem.Value.(*storeEntry).value, true
}

// Set stores value under key, overwriting any existing value in place.
func (s *Store) Set(key string, value any) {
	_, evicted := s.insert(key, value, true)
	s.notifyEvicted(evicted)
}

// FetchOrCompute returns the value stored under key, or calls producer once,
// stores its result, and returns it. A producer error is returned unchanged
// and nothing is stored. A producer panic propagates and nothing is stored.
func (s *Store) FetchOrCompute(key string, producer func() (any, error)) (any, error) {
	value, _, evicted, err := s.fetch(key, producer)
	s.notifyEvicted(evicted)
	return value, err
}

// Delete removes key from the store. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.order.Remove(elem)
		delete(s.entries, key)
	}
}

// Flush removes every entry.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*list.Element, s.capacity)
	s.order.Init()
	s.stats.Flushes++
}

// Keys returns the stored keys, oldest insertion first.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*storeEntry).key)
	}
	return keys
}

// Stats returns a snapshot of the store's counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.Len = len(s.entries)
	st.Capacity = s.capacity
	return st
}

// fetch is FetchOrCompute without the eviction callback, reporting whether
// the value was a hit and which entries were evicted.
func (s *Store) fetch(key string, producer func() (any, error)) (any, bool, []*storeEntry, error) {
	if value, ok := s.Get(key); ok {
		return value, true, nil, nil
	}

	value, err := producer()
	if err != nil {
		return nil, false, nil, err
	}

	stored, evicted := s.insert(key, value, false)
	return stored, false, evicted, nil
}

// insert writes key under the lock. With overwrite unset, an entry stored by
// a concurrent caller wins and its value is returned instead.
func (s *Store) insert(key string, value any, overwrite bool) (any, []*storeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*storeEntry)
		if !overwrite {
			return entry.value, nil
		}
		entry.value = value
		s.stats.Sets++
		return value, nil
	}

	s.entries[key] = s.order.PushBack(&storeEntry{key: key, value: value})
	s.stats.Sets++

	var evicted []*storeEntry
	for len(s.entries) > s.capacity {
		oldest := s.order.Front()
		entry := oldest.Value.(*storeEntry)
		s.order.Remove(oldest)
		delete(s.entries, entry.key)
		s.stats.Evictions++
		evicted = append(evicted, entry)
	}
	return value, evicted
}

func (s *Store) notifyEvicted(evicted []*storeEntry) {
	if s.onEvict == nil {
		return
	}
	for _, entry := range evicted {
		s.onEvict(entry.key, entry.value)
	}
}
