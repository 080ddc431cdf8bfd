package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

type recordingRecorder struct {
	mu        sync.Mutex
	hits      int
	misses    int
	evictions int
}

func (r *recordingRecorder) RecordLookup(_ context.Context, _ string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func (r *recordingRecorder) RecordEviction(_ context.Context, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictions++
}

type unkeyable struct{}

func (unkeyable) Key(string, any) (string, error) {
	return "", errors.New("no key")
}

func newTestMemo(t *testing.T, capacity int, opts ...MemoOption) *Memo {
	t.Helper()
	m, err := NewMemo(newTestStore(t, capacity), nil, opts...)
	if err != nil {
		t.Fatalf("NewMemo() error = %v", err)
	}
	return m
}

func TestNewMemo_NilStore(t *testing.T) {
	if _, err := NewMemo(nil, nil); !errors.Is(err, ErrNilStore) {
		t.Errorf("NewMemo(nil) error = %v, want %v", err, ErrNilStore)
	}
}

func TestMemo_FetchHitAndMiss(t *testing.T) {
	rec := &recordingRecorder{}
	m := newTestMemo(t, 10, WithRecorder(rec))
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (any, error) {
		calls++
		return "<h1>Hi</h1>", nil
	}

	for i := 0; i < 3; i++ {
		got, err := m.Fetch(ctx, "Greeter", map[string]any{"name": "A"}, compute)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got != "<h1>Hi</h1>" {
			t.Errorf("Fetch() = %v", got)
		}
	}

	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if rec.misses != 1 || rec.hits != 2 {
		t.Errorf("recorder hits=%d misses=%d, want 2/1", rec.hits, rec.misses)
	}
}

func TestMemo_ComputeSeesOnlyFirstClosure(t *testing.T) {
	m := newTestMemo(t, 10)
	ctx := context.Background()
	input := map[string]any{"name": "A"}

	first, _ := m.Fetch(ctx, "Layout", input, func(context.Context) (any, error) { return "first", nil })
	second, _ := m.Fetch(ctx, "Layout", input, func(context.Context) (any, error) { return "second", nil })

	if first != "first" || second != "first" {
		t.Errorf("got %v, %v; want the first computed value both times", first, second)
	}
}

func TestMemo_ErrorsNotCached(t *testing.T) {
	m := newTestMemo(t, 10)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := m.Fetch(ctx, "Post", 1, func(context.Context) (any, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v, want %v", err, boom)
	}
	if m.Store().Len() != 0 {
		t.Errorf("error result was stored")
	}

	got, err := m.Fetch(ctx, "Post", 1, func(context.Context) (any, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Errorf("Fetch() after error = %v, %v; want ok", got, err)
	}
}

func TestMemo_KeyFailureRunsUncached(t *testing.T) {
	m, err := NewMemo(newTestStore(t, 10), unkeyable{})
	if err != nil {
		t.Fatalf("NewMemo() error = %v", err)
	}

	calls := 0
	compute := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}
	_, _ = m.Fetch(context.Background(), "X", 1, compute)
	_, _ = m.Fetch(context.Background(), "X", 1, compute)

	if calls != 2 {
		t.Errorf("compute called %d times, want 2", calls)
	}
	if m.Store().Len() != 0 {
		t.Errorf("nothing should be stored without a key")
	}
}

func TestMemo_CapacityScenario(t *testing.T) {
	rec := &recordingRecorder{}
	m := newTestMemo(t, 2, WithRecorder(rec))
	ctx := context.Background()

	names := []string{"A", "B", "C"}
	for _, name := range names {
		_, err := m.Fetch(ctx, "Greeter", map[string]any{"name": name}, func(context.Context) (any, error) {
			return "Hi " + name, nil
		})
		if err != nil {
			t.Fatalf("Fetch(%s) error = %v", name, err)
		}
	}

	var want []string
	for _, name := range []string{"B", "C"} {
		key, _ := m.Key("Greeter", map[string]any{"name": name})
		want = append(want, key)
	}
	if got := m.Store().Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want entries for B and C only: %v", got, want)
	}
	if rec.evictions != 1 {
		t.Errorf("evictions = %d, want 1", rec.evictions)
	}
}

func TestMemo_WarmOverwritesInOrder(t *testing.T) {
	m := newTestMemo(t, 10, WithWarmConcurrency(1))
	ctx := context.Background()

	_, _ = m.Fetch(ctx, "Greeter", "A", func(context.Context) (any, error) { return "stale", nil })

	err := m.Warm(ctx, "Greeter", []any{"A", "B"}, func(_ context.Context, input any) (any, error) {
		return "fresh " + input.(string), nil
	})
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}

	got, _ := m.Fetch(ctx, "Greeter", "A", func(context.Context) (any, error) { return "unused", nil })
	if got != "fresh A" {
		t.Errorf("Fetch(A) = %v, want fresh A", got)
	}
	if m.Store().Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Store().Len())
	}
}

func TestMemo_WarmReturnsFirstError(t *testing.T) {
	m := newTestMemo(t, 10, WithWarmConcurrency(1))
	boom := errors.New("boom")

	err := m.Warm(context.Background(), "Post", []any{1, 2}, func(_ context.Context, input any) (any, error) {
		if input == 2 {
			return nil, boom
		}
		return "ok", nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Warm() error = %v, want %v", err, boom)
	}
	if m.Store().Len() != 1 {
		t.Errorf("Len() = %d, want only the successful input stored", m.Store().Len())
	}
}

func TestMemo_WarmRecoversPanic(t *testing.T) {
	m := newTestMemo(t, 10)
	sentinel := errors.New("halted")

	err := m.Warm(context.Background(), "Post", []any{1}, func(context.Context, any) (any, error) {
		panic(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Warm() error = %v, want wrapping %v", err, sentinel)
	}
	if m.Store().Len() != 0 {
		t.Errorf("panicking warm must not store")
	}
}
