package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Keyer derives deterministic cache keys from component input.
//
// Contract:
// - Determinism: equal inputs produce equal keys regardless of map iteration
//   order or the named map type carrying them.
// - Fidelity: values that cannot be encoded without losing information
//   (funcs, chans, structs with unexported fields) return ErrUnkeyable.
// - Purity: Key must not mutate input or have side effects.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key for input within scope (usually the
	// component class name).
	Key(scope string, input any) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: cache:<scope>:<hash>
// where hash is the first 16 characters of SHA-256(canonical JSON(input))
func (k *DefaultKeyer) Key(scope string, input any) (string, error) {
	normalized, err := normalize(input)
	if err != nil {
		return "", err
	}
	canonical, err := canonicalize(normalized)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize input: %w", err)
	}

	hash := sha256.Sum256(canonical)
	return "cache:" + scope + ":" + hex.EncodeToString(hash[:8]), nil
}

// PackedKeyer generates xxhash keys over a sorted msgpack encoding. It is
// cheaper than DefaultKeyer but unlike it distinguishes integer and float
// encodings of the same number.
type PackedKeyer struct{}

// NewPackedKeyer creates a new packed keyer.
func NewPackedKeyer() *PackedKeyer {
	return &PackedKeyer{}
}

// Key generates a deterministic cache key.
// Format: pack:<scope>:<hash>
// where hash is the 16 hex character xxhash64 of the msgpack encoding.
func (k *PackedKeyer) Key(scope string, input any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	normalized, err := normalize(input)
	if err != nil {
		return "", err
	}
	if err := enc.Encode(normalized); err != nil {
		return "", fmt.Errorf("cache: failed to pack input: %w", err)
	}

	sum := xxhash.Sum64(buf.Bytes())
	return "pack:" + scope + ":" + fmt.Sprintf("%016x", sum), nil
}

// taggedExtID is the msgpack extension type for tagged values.
const taggedExtID int8 = 17

// tagged wraps a value whose Go type must stay part of the key, so that
// []byte("a") and the string "YQ==" or a struct and an equal map never
// share one.
type tagged struct {
	tag string
	v   any
}

// EncodeMsgpack writes t as an extension holding the tag and the value.
func (t tagged) EncodeMsgpack(enc *msgpack.Encoder) error {
	var buf bytes.Buffer
	inner := msgpack.NewEncoder(&buf)
	inner.SetSortMapKeys(true)
	if err := inner.EncodeString(t.tag); err != nil {
		return err
	}
	if err := inner.Encode(t.v); err != nil {
		return err
	}
	if err := enc.EncodeExtHeader(taggedExtID, buf.Len()); err != nil {
		return err
	}
	_, err := enc.Writer().Write(buf.Bytes())
	return err
}

var timeType = reflect.TypeOf(time.Time{})

// normalize rewrites named map and slice types (component.Props, []string,
// map[string]string...) into map[string]any and []any so that both keyers
// see one representation per value. Values that cannot be encoded without
// losing information return ErrUnkeyable.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return val, nil
	case []byte:
		return tagged{tag: "bytes", v: val}, nil
	case time.Time:
		return tagged{tag: "time", v: val.UTC().Format(time.RFC3339Nano)}, nil
	case map[string]any:
		return normalizeMap(len(val), func(yield func(string, any) bool) {
			for k, item := range val {
				if !yield(k, item) {
					return
				}
			}
		})
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", ErrUnkeyable, rv.Type().Key())
		}
		if rv.IsNil() {
			return nil, nil
		}
		return normalizeMap(rv.Len(), func(yield func(string, any) bool) {
			iter := rv.MapRange()
			for iter.Next() {
				if !yield(iter.Key().String(), iter.Value().Interface()) {
					return
				}
			}
		})
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return tagged{tag: "bytes", v: b}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Struct:
		return normalizeStruct(rv)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnkeyable, rv.Type())
}

func normalizeMap(n int, entries func(yield func(string, any) bool)) (any, error) {
	out := make(map[string]any, n)
	var err error
	entries(func(k string, item any) bool {
		var v any
		if v, err = normalize(item); err != nil {
			return false
		}
		out[k] = v
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeStruct keys a struct by its type and every field. A struct with
// an unexported or json:"-" field is rejected: two values differing only
// there would otherwise share a key.
func normalizeStruct(rv reflect.Value) (any, error) {
	rt := rv.Type()
	if rt == timeType {
		return normalize(rv.Interface())
	}
	fields := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			return nil, fmt.Errorf("%w: %s has unexported field %s", ErrUnkeyable, rt, f.Name)
		}
		if f.Tag.Get("json") == "-" {
			return nil, fmt.Errorf("%w: %s field %s is hidden from encoding", ErrUnkeyable, rt, f.Name)
		}
		n, err := normalize(rv.Field(i).Interface())
		if err != nil {
			return nil, err
		}
		fields[f.Name] = n
	}
	return tagged{tag: "struct:" + rt.PkgPath() + "." + rt.String(), v: fields}, nil
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering. Tagged values are
// written as @"tag"(value), which no JSON value can spell.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	case tagged:
		tag, err := json.Marshal(val.tag)
		if err != nil {
			return nil, err
		}
		inner, err := canonicalize(val.v)
		if err != nil {
			return nil, err
		}
		out := append([]byte("@"), tag...)
		out = append(out, '(')
		out = append(out, inner...)
		return append(out, ')'), nil
	case float64:
		// Keep 1 and 1.0 on the same key.
		return []byte(strconv.FormatFloat(val, 'g', -1, 64)), nil
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

var (
	_ Keyer = (*DefaultKeyer)(nil)
	_ Keyer = (*PackedKeyer)(nil)
)
