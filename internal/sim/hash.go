package sim

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns a stable hex digest of s. Adapters use it to derive a
// preprocessing output directory from a source file's parent directory, so
// files sharing a parent share a directory and different parents never
// collide.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
