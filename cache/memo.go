package cache

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultWarmConcurrency bounds how many warm computations run at once.
const DefaultWarmConcurrency = 4

// ComputeFunc produces the value for a memo miss.
type ComputeFunc func(ctx context.Context) (any, error)

// WarmFunc produces the value for one warm input.
type WarmFunc func(ctx context.Context, input any) (any, error)

// Memo wraps a Store with key derivation and telemetry.
//
// Contract:
//   - Keys depend only on the input passed to Fetch, never on what compute
//     closes over. Callers needing per-call variation must fold it into input.
//   - Errors are NOT cached. A compute that panics stores nothing.
//   - Concurrency: safe for concurrent use; see Store for the no single-flight
//     race.
type Memo struct {
	store     *Store
	keyer     Keyer
	recorder  Recorder
	warmLimit int
}

// MemoOption configures a Memo.
type MemoOption func(*Memo)

// WithRecorder sets the Recorder notified of lookups and evictions.
func WithRecorder(r Recorder) MemoOption {
	return func(m *Memo) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithWarmConcurrency bounds parallel warm computations. Values below one
// mean sequential warming, which preserves input order in the store.
func WithWarmConcurrency(n int) MemoOption {
	return func(m *Memo) {
		if n < 1 {
			n = 1
		}
		m.warmLimit = n
	}
}

// NewMemo creates a Memo over store. A nil keyer selects DefaultKeyer.
func NewMemo(store *Store, keyer Keyer, opts ...MemoOption) (*Memo, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	m := &Memo{
		store:     store,
		keyer:     keyer,
		recorder:  noopRecorder{},
		warmLimit: DefaultWarmConcurrency,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Store returns the underlying store.
func (m *Memo) Store() *Store {
	return m.store
}

// Key returns the cache key Fetch would use for input.
func (m *Memo) Key(scope string, input any) (string, error) {
	key, err := m.keyer.Key(scope, input)
	if err != nil {
		return "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// Fetch returns the cached value for input, computing and storing it on a
// miss. If no key can be derived, compute runs uncached.
func (m *Memo) Fetch(ctx context.Context, scope string, input any, compute ComputeFunc) (any, error) {
	key, err := m.Key(scope, input)
	if err != nil {
		return compute(ctx)
	}

	value, hit, evicted, err := m.store.fetch(key, func() (any, error) {
		return compute(ctx)
	})
	m.store.notifyEvicted(evicted)
	m.recorder.RecordLookup(ctx, m.store.name, hit)
	m.recordEvictions(ctx, evicted)
	return value, err
}

// Warm computes every input and stores the results, overwriting existing
// entries. The first error cancels the remaining work and is returned; a
// panicking compute is reported as an error wrapping the panic value when
// that value is an error.
func (m *Memo) Warm(ctx context.Context, scope string, inputs []any, compute WarmFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.warmLimit)

	for _, input := range inputs {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if perr, ok := r.(error); ok {
						err = fmt.Errorf("cache: warm %s: %w", scope, perr)
						return
					}
					err = fmt.Errorf("cache: warm %s: panic: %v", scope, r)
				}
			}()

			key, err := m.Key(scope, input)
			if err != nil {
				return fmt.Errorf("cache: warm %s: %w", scope, err)
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := compute(gctx, input)
			if err != nil {
				return err
			}
			_, evicted := m.store.insert(key, value, true)
			m.store.notifyEvicted(evicted)
			m.recordEvictions(gctx, evicted)
			return nil
		})
	}
	return g.Wait()
}

func (m *Memo) recordEvictions(ctx context.Context, evicted []*storeEntry) {
	for range evicted {
		m.recorder.RecordEviction(ctx, m.store.name)
	}
}
