package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type namedProps map[string]any

type point struct {
	X, Y int
}

type opaque struct {
	n int
}

type hidden struct {
	Name  string
	Token string `json:"-"`
}

type blob []byte

func keyers() map[string]Keyer {
	return map[string]Keyer{
		"default": NewDefaultKeyer(),
		"packed":  NewPackedKeyer(),
	}
}

func TestKeyer_EqualInputsEqualKeys(t *testing.T) {
	tests := []struct {
		name string
		a, b any
	}{
		{
			name: "insertion order",
			a:    map[string]any{"b": 2, "a": 1, "c": 3},
			b:    map[string]any{"c": 3, "a": 1, "b": 2},
		},
		{
			name: "named map type",
			a:    namedProps{"name": "A"},
			b:    map[string]any{"name": "A"},
		},
		{
			name: "nested maps",
			a:    map[string]any{"outer": map[string]any{"z": 26, "a": 1}, "other": "v"},
			b:    map[string]any{"other": "v", "outer": namedProps{"a": 1, "z": 26}},
		},
		{
			name: "typed slices",
			a:    map[string]any{"tags": []string{"x", "y"}},
			b:    map[string]any{"tags": []any{"x", "y"}},
		},
		{
			name: "string maps",
			a:    map[string]string{"q": "1"},
			b:    map[string]any{"q": "1"},
		},
		{
			name: "nil",
			a:    nil,
			b:    nil,
		},
	}

	for kname, keyer := range keyers() {
		for _, tt := range tests {
			t.Run(kname+"/"+tt.name, func(t *testing.T) {
				ka, err := keyer.Key("Greeter", tt.a)
				if err != nil {
					t.Fatalf("Key(a) error = %v", err)
				}
				kb, err := keyer.Key("Greeter", tt.b)
				if err != nil {
					t.Fatalf("Key(b) error = %v", err)
				}
				if ka != kb {
					t.Errorf("keys differ for equal input:\n  a=%s\n  b=%s", ka, kb)
				}
			})
		}
	}
}

func TestKeyer_DistinctInputsDistinctKeys(t *testing.T) {
	tests := []struct {
		name string
		a, b any
	}{
		{"different values", map[string]any{"name": "A"}, map[string]any{"name": "B"}},
		{"array order", map[string]any{"items": []any{1, 2, 3}}, map[string]any{"items": []any{3, 2, 1}}},
		{"nil vs empty map", nil, map[string]any{}},
		{"extra key", map[string]any{"a": 1}, map[string]any{"a": 1, "b": nil}},
		{"bytes vs base64 string", map[string]any{"v": []byte("a")}, map[string]any{"v": "YQ=="}},
		{"named bytes vs string", blob("a"), "YQ=="},
		{"struct vs equal map", map[string]any{"p": point{1, 2}}, map[string]any{"p": map[string]any{"X": 1, "Y": 2}}},
		{"struct fields", point{1, 2}, point{2, 1}},
		{"time vs string", map[string]any{"at": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}, map[string]any{"at": "2024-01-02T03:04:05Z"}},
	}

	for kname, keyer := range keyers() {
		for _, tt := range tests {
			t.Run(kname+"/"+tt.name, func(t *testing.T) {
				ka, err := keyer.Key("Greeter", tt.a)
				if err != nil {
					t.Fatalf("Key(a) error = %v", err)
				}
				kb, err := keyer.Key("Greeter", tt.b)
				if err != nil {
					t.Fatalf("Key(b) error = %v", err)
				}
				if ka == kb {
					t.Errorf("keys should differ:\n  a=%s\n  b=%s", ka, kb)
				}
			})
		}
	}
}

func TestKeyer_RejectsLossyValues(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"unexported field", map[string]any{"v": opaque{1}}},
		{"pointer to unexported field", map[string]any{"v": &opaque{2}}},
		{"json hidden field", hidden{Name: "a", Token: "secret"}},
		{"func", map[string]any{"fn": func() {}}},
		{"chan", map[string]any{"ch": make(chan int)}},
		{"nested in slice", []any{"ok", opaque{3}}},
		{"non-string map key", map[int]string{1: "a"}},
	}

	for kname, keyer := range keyers() {
		for _, tt := range tests {
			t.Run(kname+"/"+tt.name, func(t *testing.T) {
				if _, err := keyer.Key("Greeter", tt.input); !errors.Is(err, ErrUnkeyable) {
					t.Errorf("Key() error = %v, want %v", err, ErrUnkeyable)
				}
			})
		}
	}
}

func TestKeyer_ExportedStructsAreStable(t *testing.T) {
	for kname, keyer := range keyers() {
		t.Run(kname, func(t *testing.T) {
			k1, err := keyer.Key("Map", map[string]any{"p": point{1, 2}, "at": time.Unix(0, 0)})
			if err != nil {
				t.Fatalf("Key() error = %v", err)
			}
			k2, _ := keyer.Key("Map", map[string]any{"at": time.Unix(0, 0).In(time.FixedZone("x", 3600)), "p": &point{1, 2}})
			if k1 != k2 {
				t.Errorf("equal structs and instants should share a key: %s vs %s", k1, k2)
			}
		})
	}
}

func TestKeyer_ScopeSeparatesClasses(t *testing.T) {
	for kname, keyer := range keyers() {
		t.Run(kname, func(t *testing.T) {
			input := map[string]any{"name": "A"}
			k1, _ := keyer.Key("Greeter", input)
			k2, _ := keyer.Key("Farewell", input)
			if k1 == k2 {
				t.Errorf("keys should differ across scopes: %s", k1)
			}
		})
	}
}

func TestKeyer_IntAndFloatShareDefaultKey(t *testing.T) {
	keyer := NewDefaultKeyer()

	k1, _ := keyer.Key("Page", map[string]any{"id": 1})
	k2, _ := keyer.Key("Page", map[string]any{"id": 1.0})
	if k1 != k2 {
		t.Errorf("1 and 1.0 should share a key: %s vs %s", k1, k2)
	}
}

func TestKeyer_DoesNotMutateInput(t *testing.T) {
	input := namedProps{"nested": namedProps{"a": 1}}
	for kname, keyer := range keyers() {
		t.Run(kname, func(t *testing.T) {
			if _, err := keyer.Key("Page", input); err != nil {
				t.Fatalf("Key() error = %v", err)
			}
			if _, ok := input["nested"].(namedProps); !ok {
				t.Errorf("input was rewritten: %T", input["nested"])
			}
		})
	}
}

func TestKeyer_KeyFormat(t *testing.T) {
	tests := []struct {
		keyer  Keyer
		prefix string
	}{
		{NewDefaultKeyer(), "cache:Greeter:"},
		{NewPackedKeyer(), "pack:Greeter:"},
	}

	for _, tt := range tests {
		key, err := tt.keyer.Key("Greeter", map[string]any{"name": "A"})
		if err != nil {
			t.Fatalf("Key() error = %v", err)
		}
		if !strings.HasPrefix(key, tt.prefix) {
			t.Fatalf("Key should have prefix %q, got %q", tt.prefix, key)
		}

		hash := strings.TrimPrefix(key, tt.prefix)
		if len(hash) != 16 {
			t.Errorf("Hash should be 16 characters, got %d: %q", len(hash), hash)
		}
		for _, c := range hash {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
				t.Errorf("Hash should be lowercase hex, got %q", hash)
				break
			}
		}
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) = %v", key, err)
		}
	}
}
