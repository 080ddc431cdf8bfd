package component

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Response is a terminal response: what a boundary sends instead of the
// composed output when a render halts.
type Response struct {
	Status int
	Header http.Header
	Body   string
}

// NotFound returns an empty 404 response.
func NotFound() Response {
	return Response{Status: http.StatusNotFound, Header: http.Header{}}
}

// HaltError carries a terminal Response up the call stack. It is a control
// signal, not a failure: Boundary converts it to its Response.
type HaltError struct {
	Response Response
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("component: halted with status %d", e.Response.Status)
}

// Halted marks the error as a halt for observe.IsHalt.
func (e *HaltError) Halted() bool {
	return true
}

// Halt returns a *HaltError for resp. Renders return it and every frame
// above passes it along like any other error.
func Halt(resp Response) error {
	return &HaltError{Response: resp}
}

// Abort unwinds straight to the enclosing Boundary by panicking with a
// *HaltError. Use it where threading an error up is impractical. It must be
// called on the goroutine running the Boundary.
func Abort(resp Response) {
	panic(&HaltError{Response: resp})
}

// AsHalt extracts a *HaltError from err.
func AsHalt(err error) (*HaltError, bool) {
	var h *HaltError
	if errors.As(err, &h) {
		return h, true
	}
	return nil, false
}

type boundaryKey struct{}

// InBoundary reports whether ctx is already inside a Boundary.
func InBoundary(ctx context.Context) bool {
	return ctx.Value(boundaryKey{}) != nil
}

// Boundary runs fn and catches a halt, whether returned or panicked, and
// reports its Response in halted. Any other panic is re-raised. Partial
// output from the halted frames is discarded.
//
// Only the outermost Boundary catches. A Boundary entered with a ctx that
// is already inside one runs fn directly, so halts keep unwinding to the
// request entry.
func Boundary(ctx context.Context, fn func(ctx context.Context) (any, error)) (out any, halted *Response, err error) {
	if InBoundary(ctx) {
		out, err = fn(ctx)
		return out, nil, err
	}
	ctx = context.WithValue(ctx, boundaryKey{}, struct{}{})

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if rerr, ok := r.(error); ok {
			if h, ok := AsHalt(rerr); ok {
				resp := h.Response
				out, halted, err = nil, &resp, nil
				return
			}
		}
		panic(r)
	}()

	out, err = fn(ctx)
	if h, ok := AsHalt(err); ok {
		resp := h.Response
		return nil, &resp, nil
	}
	return out, nil, err
}
