package config

import "errors"

var (
	// ErrMissingVariable indicates a ${NAME} reference to an unset variable.
	ErrMissingVariable = errors.New("config: missing environment variable")

	// ErrInvalidValue indicates a variable could not be parsed.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrInvalidCapacity indicates a negative cache capacity.
	ErrInvalidCapacity = errors.New("config: cache capacity must be >= 0")

	// ErrInvalidHitRatio indicates a hit ratio outside [0, 1].
	ErrInvalidHitRatio = errors.New("config: hit ratio must be within [0, 1]")

	// ErrInvalidConcurrency indicates a negative render limit.
	ErrInvalidConcurrency = errors.New("config: max concurrent renders must be >= 0")

	// ErrWeakTokenKey indicates a token key shorter than MinTokenKeyLength.
	ErrWeakTokenKey = errors.New("config: token key too short")
)
