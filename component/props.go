package component

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Props is the immutable input bag of one component invocation. Classes
// deep-copy props at construction, so later changes by the caller are not
// observed by the instance.
type Props map[string]any

// Get returns the value stored under key.
func (p Props) Get(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

// Has reports whether key is present.
func (p Props) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the value under key as a string. Missing and nil values
// yield "".
func (p Props) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value under key as an int. Numeric strings and integral
// floats convert; anything else reports false.
func (p Props) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

// Bool returns the value under key as a bool. Strings are parsed with
// strconv.ParseBool; anything else is false.
func (p Props) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// With returns a copy of p with key set to value.
func (p Props) With(key string, value any) Props {
	out := p.Clone()
	out[key] = deepCopy(value)
	return out
}

// Merge returns a copy of p overlaid with other.
func (p Props) Merge(other Props) Props {
	out := p.Clone()
	for k, v := range other {
		out[k] = deepCopy(v)
	}
	return out
}

// Clone returns a deep copy of p. Nested maps and slices of the generic
// shapes (map[string]any, []any, Props) are copied; other values are
// shared.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = deepCopy(v)
	}
	return out
}

// Keys returns the prop names in sorted order.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case Props:
		return val.Clone()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	}
	return v
}
