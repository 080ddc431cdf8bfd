package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Lookup resolves a variable name.
type Lookup func(key string) (string, bool)

// ExpandStrict expands $NAME and ${NAME} in s using lookup. A ${NAME}
// whose variable is unset is an error naming every such variable. $$
// emits a literal $.
func ExpandStrict(s string, lookup Lookup) (string, error) {
	const dollar = "\x00COMPOSE_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	missing := make(map[string]struct{})
	for _, m := range refPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := lookup(m[1]); !ok {
			missing[m[1]] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(keys, ", "))
	}

	s = os.Expand(s, func(key string) string {
		v, _ := lookup(key)
		return v
	})
	return strings.ReplaceAll(s, dollar, "$"), nil
}

// ExpandEnvStrict is ExpandStrict against the process environment.
func ExpandEnvStrict(s string) (string, error) {
	return ExpandStrict(s, os.LookupEnv)
}
