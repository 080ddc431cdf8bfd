package component

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Bind decodes the instance props into a T, honouring json struct tags.
// Decode failures are construction errors wrapping ErrInvalidProps.
func Bind[T any](in *Instance) (T, error) {
	var out T
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(map[string]any(in.props)); err != nil {
		return out, bindError(in, err)
	}

	dec := msgpack.NewDecoder(&buf)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&out); err != nil {
		return out, bindError(in, err)
	}
	return out, nil
}

func bindError(in *Instance, err error) error {
	return &ConstructionError{
		Component: in.Name(),
		Err:       fmt.Errorf("%w: %w", ErrInvalidProps, err),
	}
}
