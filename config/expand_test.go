package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING_B} c=${MISSING_A}")
	require.ErrorIs(t, err, ErrMissingVariable)
	assert.Contains(t, err.Error(), "MISSING_A, MISSING_B")
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	require.NoError(t, err)
	assert.Equal(t, "$y", out)
}

func TestExpandStrict_BareReference(t *testing.T) {
	env := map[string]string{"HOST": "example.com"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	out, err := ExpandStrict("https://$HOST/$UNSET", lookup)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", out)
}
