package respond

import (
	"fmt"
	"net/http"

	"github.com/jonwraymond/compose/component"
)

// PropsDecoder builds root props from a request.
type PropsDecoder interface {
	Decode(r *http.Request) (component.Props, error)
}

// DecoderFunc adapts a function to PropsDecoder.
type DecoderFunc func(r *http.Request) (component.Props, error)

// Decode calls f(r).
func (f DecoderFunc) Decode(r *http.Request) (component.Props, error) {
	return f(r)
}

// RequestDecoder maps query and form values to props. A key with one value
// becomes a string; a repeated key becomes a []any of strings.
//
// Request metadata is added under "request.method" and "request.path".
// Each name in Headers is copied to "request.header.<Name>" when present,
// and each name in PathValues is copied from r.PathValue.
type RequestDecoder struct {
	Headers    []string
	PathValues []string
}

// Decode implements PropsDecoder.
func (d RequestDecoder) Decode(r *http.Request) (component.Props, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	props := component.Props{
		"request.method": r.Method,
		"request.path":   r.URL.Path,
	}
	for key, values := range r.Form {
		switch len(values) {
		case 0:
		case 1:
			props[key] = values[0]
		default:
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			props[key] = list
		}
	}
	for _, name := range d.Headers {
		if v := r.Header.Get(name); v != "" {
			props["request.header."+http.CanonicalHeaderKey(name)] = v
		}
	}
	for _, name := range d.PathValues {
		if v := r.PathValue(name); v != "" {
			props[name] = v
		}
	}
	return props, nil
}

// ChainDecoder merges the props of each decoder in order. Later decoders
// override keys set by earlier ones.
type ChainDecoder []PropsDecoder

// Decode implements PropsDecoder.
func (c ChainDecoder) Decode(r *http.Request) (component.Props, error) {
	props := component.Props{}
	for _, d := range c {
		next, err := d.Decode(r)
		if err != nil {
			return nil, err
		}
		props = props.Merge(next)
	}
	return props, nil
}
