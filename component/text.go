package component

import (
	"fmt"
	"strings"
)

// Text coerces a render output to a string at the boundary. Slices are
// rendered element by element and joined with newlines; nil becomes "".
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	case []string:
		return strings.Join(val, "\n")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Text(item)
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(val)
	}
}
