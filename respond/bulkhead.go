package respond

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrent is used when a bulkhead is built with a
// non-positive limit.
const DefaultMaxConcurrent = 10

// Bulkhead limits concurrent renders.
type Bulkhead struct {
	maxWait time.Duration
	sem     chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewBulkhead allows maxConcurrent renders at once. A caller waits up to
// maxWait for a slot; zero rejects immediately.
func NewBulkhead(maxConcurrent int, maxWait time.Duration) *Bulkhead {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Bulkhead{
		maxWait: maxWait,
		sem:     make(chan struct{}, maxConcurrent),
	}
}

// Acquire takes a slot or returns ErrBulkheadFull. A canceled ctx returns
// ctx.Err().
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		b.admitted()
		return nil
	default:
	}

	if b.maxWait <= 0 {
		b.reject()
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		b.admitted()
		return nil
	case <-timer.C:
		b.reject()
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.sem:
		b.mu.Lock()
		b.active--
		b.mu.Unlock()
	default:
	}
}

func (b *Bulkhead) admitted() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
}

func (b *Bulkhead) reject() {
	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
}

// BulkheadStats is a snapshot of bulkhead usage.
type BulkheadStats struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

// Stats returns current usage.
func (b *Bulkhead) Stats() BulkheadStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BulkheadStats{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Available:     cap(b.sem) - b.active,
		MaxConcurrent: cap(b.sem),
		Rejected:      b.rejected,
	}
}
