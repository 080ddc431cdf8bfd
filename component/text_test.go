package component

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	u, _ := url.Parse("https://example.com/a")

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "<p>", "<p>"},
		{"bytes", []byte("raw"), "raw"},
		{"stringer", u, "https://example.com/a"},
		{"error", errors.New("bad"), "bad"},
		{"string slice", []string{"a", "b"}, "a\nb"},
		{"mixed slice", []any{"a", 1, nil, []string{"x", "y"}}, "a\n1\n\nx\ny"},
		{"int", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestProps_Accessors(t *testing.T) {
	p := Props{
		"s":      "hello",
		"n":      42,
		"f":      3.0,
		"frac":   3.5,
		"numstr": "7",
		"b":      true,
		"bstr":   "true",
		"nil":    nil,
	}

	assert.Equal(t, "hello", p.String("s"))
	assert.Equal(t, "42", p.String("n"))
	assert.Equal(t, "", p.String("nil"))
	assert.Equal(t, "", p.String("absent"))

	for key, want := range map[string]int{"n": 42, "f": 3, "numstr": 7} {
		got, ok := p.Int(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok := p.Int("frac")
	assert.False(t, ok)
	_, ok = p.Int("s")
	assert.False(t, ok)

	assert.True(t, p.Bool("b"))
	assert.True(t, p.Bool("bstr"))
	assert.False(t, p.Bool("s"))

	v, ok := p.Get("nil")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, []string{"b", "bstr", "f", "frac", "n", "nil", "numstr", "s"}, p.Keys())
}

func TestProps_CopyOnWrite(t *testing.T) {
	base := Props{"list": []any{"a"}}
	next := base.With("extra", 1)

	assert.False(t, base.Has("extra"))
	next["list"].([]any)[0] = "changed"
	assert.Equal(t, []any{"a"}, base["list"])

	merged := base.Merge(Props{"list": "override"})
	assert.Equal(t, "override", merged["list"])
	assert.Equal(t, []any{"a"}, base["list"])

	var empty Props
	assert.NotNil(t, empty.Clone())
}
