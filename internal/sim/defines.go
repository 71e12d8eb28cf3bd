package sim

import (
	"sort"
	"strings"
)

// EscapeDefineValue escapes double quotes in a macro value so it can be
// embedded in a tool's define flag. Applied exactly once per value.
func EscapeDefineValue(value string) string {
	return strings.ReplaceAll(value, `"`, `\"`)
}

// SortedDefineNames returns the macro names in lexicographic order. Argument
// vectors must be deterministic functions of their inputs, so map iteration
// order cannot leak into them.
func SortedDefineNames(defines map[string]string) []string {
	names := make([]string, 0, len(defines))
	for name := range defines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
