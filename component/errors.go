package component

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingProp indicates a required prop was absent at construction.
	ErrMissingProp = errors.New("component: missing required prop")

	// ErrInvalidProps indicates props could not be validated or bound.
	ErrInvalidProps = errors.New("component: invalid props")
)

// ConstructionError reports props that fail a class's requirements. It is
// returned before any render or cache activity.
type ConstructionError struct {
	Component string
	Missing   []string
	Err       error
}

func (e *ConstructionError) Error() string {
	var b strings.Builder
	b.WriteString("component: construct ")
	b.WriteString(e.Component)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
		return b.String()
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// IsConstructionError reports whether err came from construction.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}
