package respond

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonwraymond/compose/component"
)

var (
	// ErrNilRoot indicates New was called without a root class.
	ErrNilRoot = errors.New("respond: root component is nil")

	// ErrBulkheadFull indicates every render slot was busy.
	ErrBulkheadFull = errors.New("respond: render capacity exhausted")

	// ErrBadRequest indicates the request could not be turned into props.
	ErrBadRequest = errors.New("respond: bad request")

	// ErrMissingToken indicates no props token was sent.
	ErrMissingToken = errors.New("respond: props token missing")

	// ErrInvalidToken indicates a props token failed verification.
	ErrInvalidToken = errors.New("respond: props token invalid")

	// ErrTokenExpired indicates a props token is past its expiry.
	ErrTokenExpired = errors.New("respond: props token expired")
)

// StatusFor maps a boundary error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case component.IsConstructionError(err),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return http.StatusBadRequest
	case errors.Is(err, ErrBulkheadFull), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
