package sim

import "strings"

// illegalChars are printable characters that are shell- or
// filesystem-special on at least one target platform.
const illegalChars = ` <>"|:*%?\/#&;()`

// EncodeTestName replaces every character outside the legal printable set
// with an underscore and appends a trailing underscore, producing a string
// safe as a path component on all target platforms.
func EncodeTestName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 1)
	for _, r := range name {
		if isLegalChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('_')
	return b.String()
}

// isLegalChar reports whether r is an ASCII graphic character outside the
// illegal set.
func isLegalChar(r rune) bool {
	if r <= ' ' || r > '~' {
		return false
	}
	return !strings.ContainsRune(illegalChars, r)
}
