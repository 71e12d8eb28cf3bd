package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashString(t *testing.T) {
	t.Run("identical inputs share a hash", func(t *testing.T) {
		assert.Equal(t, HashString("/src/rtl"), HashString("/src/rtl"))
	})

	t.Run("different inputs never collide", func(t *testing.T) {
		assert.NotEqual(t, HashString("/src/rtl"), HashString("/src/tb"))
	})

	t.Run("hash is a safe path component", func(t *testing.T) {
		h := HashString("/some/dir")
		assert.Equal(t, filepath.Base(h), h)
	})
}

func TestWriteArgsFile(t *testing.T) {
	t.Run("one token per line with trailing newline", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "compile.args")
		require.NoError(t, WriteArgsFile(path, []string{"-sv", "-work", "work", "/src/foo.sv"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "-sv\n-work\nwork\n/src/foo.sv\n", string(data))
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "run.args")
		require.NoError(t, WriteArgsFile(path, []string{"-runall"}))
		assert.FileExists(t, path)
	})
}

func TestEscapeDefineValue(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no quotes untouched", input: "8", expected: "8"},
		{name: "quote escaped exactly once", input: `a"b`, expected: `a\"b`},
		{name: "multiple quotes", input: `"x"`, expected: `\"x\"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EscapeDefineValue(tc.input))
		})
	}
}

func TestSortedDefineNames(t *testing.T) {
	names := SortedDefineNames(map[string]string{"WIDTH": "8", "ASSERT_ON": "1", "DEPTH": "4"})
	assert.Equal(t, []string{"ASSERT_ON", "DEPTH", "WIDTH"}, names)
}
