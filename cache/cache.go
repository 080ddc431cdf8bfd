package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// DefaultCapacity is the number of entries a store holds when no capacity
// is configured.
const DefaultCapacity = 100

// Sentinel errors for cache operations.
var (
	ErrNilStore        = errors.New("cache: store is nil")
	ErrInvalidKey      = errors.New("cache: key is invalid")
	ErrKeyTooLong      = errors.New("cache: key exceeds max length")
	ErrInvalidCapacity = errors.New("cache: capacity must not be negative")
	ErrMissingName     = errors.New("cache: store name is required")
	ErrUnkeyable       = errors.New("cache: input cannot be keyed")
)

// Recorder observes cache activity. observe.Metrics implements it.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: recording is best-effort and must not panic.
type Recorder interface {
	// RecordLookup records a memo lookup against the named store.
	RecordLookup(ctx context.Context, store string, hit bool)

	// RecordEviction records one entry evicted from the named store.
	RecordEviction(ctx context.Context, store string)
}

type noopRecorder struct{}

func (noopRecorder) RecordLookup(context.Context, string, bool) {}
func (noopRecorder) RecordEviction(context.Context, string)     {}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
