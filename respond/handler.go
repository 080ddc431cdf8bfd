package respond

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/compose/component"
	"github.com/jonwraymond/compose/observe"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// DefaultContentType is set when neither the root nor the halt names one.
const DefaultContentType = "text/html; charset=utf-8"

// ErrorHandler writes the response for a failed render.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Handler serves one root component over HTTP.
type Handler struct {
	root        *component.Class
	decoder     PropsDecoder
	children    component.Children
	timeout     time.Duration
	bulkhead    *Bulkhead
	memoized    bool
	logger      observe.Logger
	onError     ErrorHandler
	contentType string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithDecoder sets how requests become props. The default is RequestDecoder{}.
func WithDecoder(d PropsDecoder) HandlerOption {
	return func(h *Handler) {
		if d != nil {
			h.decoder = d
		}
	}
}

// WithChildren sets the continuation passed to the root.
func WithChildren(children component.Children) HandlerOption {
	return func(h *Handler) {
		h.children = children
	}
}

// WithTimeout bounds each render with a context deadline.
func WithTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.timeout = d
	}
}

// WithMaxConcurrent limits concurrent renders. Requests wait up to maxWait
// for a slot before failing with 503.
func WithMaxConcurrent(n int, maxWait time.Duration) HandlerOption {
	return func(h *Handler) {
		h.bulkhead = NewBulkhead(n, maxWait)
	}
}

// WithMemoized renders the root through its memo cache.
func WithMemoized() HandlerOption {
	return func(h *Handler) {
		h.memoized = true
	}
}

// WithLogger sets the access logger.
func WithLogger(l observe.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithErrorHandler replaces the default plain-text error writer.
func WithErrorHandler(fn ErrorHandler) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.onError = fn
		}
	}
}

// WithContentType sets the default Content-Type.
func WithContentType(ct string) HandlerOption {
	return func(h *Handler) {
		if ct != "" {
			h.contentType = ct
		}
	}
}

// New creates a Handler for root.
func New(root *component.Class, opts ...HandlerOption) (*Handler, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	h := &Handler{
		root:        root,
		decoder:     RequestDecoder{},
		logger:      observe.NopLogger(),
		onError:     writeError,
		contentType: DefaultContentType,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Bulkhead returns the concurrency limiter, or nil when none is set.
func (h *Handler) Bulkhead() *Bulkhead {
	return h.bulkhead
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	ctx := WithRequestID(r.Context(), id)
	r = r.WithContext(ctx)

	status, err := h.serve(ctx, w, r)
	h.access(ctx, r, status, time.Since(start), err)
}

func (h *Handler) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	if h.bulkhead != nil {
		if err := h.bulkhead.Acquire(ctx); err != nil {
			if !errors.Is(err, ErrBulkheadFull) {
				err = errors.Join(ErrBulkheadFull, err)
			}
			return h.fail(w, r, err)
		}
		defer h.bulkhead.Release()
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	props, err := h.decoder.Decode(r)
	if err != nil {
		return h.fail(w, r, err)
	}

	var resp component.Response
	if h.memoized {
		resp, err = ServeCached(ctx, h.root, props, h.children)
	} else {
		resp, err = Serve(ctx, h.root, props, h.children)
	}
	if err != nil {
		return h.fail(w, r, err)
	}

	header := w.Header()
	for key, values := range resp.Header {
		header[key] = append([]string(nil), values...)
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", h.contentType)
	}
	w.WriteHeader(resp.Status)
	if r.Method != http.MethodHead {
		_, _ = io.WriteString(w, resp.Body)
	}
	return resp.Status, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) (int, error) {
	h.onError(w, r, err)
	return StatusFor(err), err
}

func (h *Handler) access(ctx context.Context, r *http.Request, status int, dur time.Duration, err error) {
	fields := []observe.Field{
		{Key: "request_id", Value: RequestIDFromContext(ctx)},
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
		{Key: "status", Value: status},
		{Key: "duration_ms", Value: float64(dur.Microseconds()) / 1000},
	}
	switch {
	case err == nil:
		h.logger.Info(ctx, "request served", fields...)
	case status >= http.StatusInternalServerError:
		fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
		h.logger.Error(ctx, "request failed", fields...)
	default:
		fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
		h.logger.Warn(ctx, "request rejected", fields...)
	}
}

func writeError(w http.ResponseWriter, _ *http.Request, err error) {
	status := StatusFor(err)
	http.Error(w, http.StatusText(status), status)
}
