package respond

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/compose/component"
	"github.com/jonwraymond/compose/observe"
)

func newHandler(t *testing.T, root *component.Class, opts ...HandlerOption) *Handler {
	t.Helper()
	h, err := New(root, opts...)
	require.NoError(t, err)
	return h
}

func TestNew_NilRoot(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilRoot)
}

func TestHandler_Renders(t *testing.T) {
	h := newHandler(t, greeter())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?name=Ada", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Hi Ada</h1>", rec.Body.String())
	assert.Equal(t, DefaultContentType, rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestHandler_RequestIDPropagates(t *testing.T) {
	var seen string
	root := component.New("Echo", component.WithRender(func(ctx context.Context, _ *component.Instance) (any, error) {
		seen = RequestIDFromContext(ctx)
		return "ok", nil
	}))
	h := newHandler(t, root)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestHandler_HaltedResponse(t *testing.T) {
	child := component.New("Guard", component.WithRender(func(context.Context, *component.Instance) (any, error) {
		component.Abort(component.Response{
			Status: http.StatusUnauthorized,
			Header: http.Header{"Content-Type": {"application/json"}},
			Body:   `{"error":"login"}`,
		})
		return nil, nil
	}))
	root := component.New("Page", component.WithRender(func(ctx context.Context, in *component.Instance) (any, error) {
		body, err := in.YieldText(ctx)
		if err != nil {
			return nil, err
		}
		return "<main>" + body + "</main>", nil
	}))
	h := newHandler(t, root, WithChildren(child.Child(nil, nil)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"error":"login"}`, rec.Body.String())
}

func TestHandler_ConstructionErrorIs400(t *testing.T) {
	h := newHandler(t, greeter())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Timeout(t *testing.T) {
	root := component.New("Slow", component.WithRender(func(ctx context.Context, _ *component.Instance) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	}))
	h := newHandler(t, root, WithTimeout(10*time.Millisecond))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandler_BulkheadFull(t *testing.T) {
	h := newHandler(t, greeter(), WithMaxConcurrent(1, 0))
	require.NoError(t, h.Bulkhead().Acquire(context.Background()))
	defer h.Bulkhead().Release()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?name=Ada", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_CustomErrorHandler(t *testing.T) {
	var got error
	h := newHandler(t, greeter(), WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, component.IsConstructionError(got))
}

func TestHandler_HeadOmitsBody(t *testing.T) {
	h := newHandler(t, greeter(), WithContentType("text/plain"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/?name=Ada", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestHandler_TokenDecoder(t *testing.T) {
	token, err := SignProps(testKey, "", component.Props{"name": "Grace"}, time.Minute)
	require.NoError(t, err)
	h := newHandler(t, greeter(), WithDecoder(TokenDecoder{Key: testKey}), WithMemoized())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Hi Grace</h1>", rec.Body.String())
}

func TestHandler_AccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)
	boom := errors.New("boom")
	root := component.New("Failing", component.WithRender(func(context.Context, *component.Instance) (any, error) {
		return nil, boom
	}))
	h := newHandler(t, root, WithLogger(logger))

	r := httptest.NewRequest(http.MethodGet, "/page", nil)
	r.Header.Set(RequestIDHeader, "req-9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, "/page", entry["path"])
	assert.Equal(t, float64(http.StatusInternalServerError), entry["status"])
	assert.Equal(t, "boom", entry["error"])
}
