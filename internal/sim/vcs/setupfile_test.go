package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFileParse(t *testing.T) {
	t.Run("library definitions are keyed, other lines preserved", func(t *testing.T) {
		s := parseSetupContents("-- header comment\nwork : /out/libraries/work\n\nTIMEBASE = NS\nlib2 : /out/libraries/lib2\n")

		assert.Equal(t, map[string]string{
			"work": "/out/libraries/work",
			"lib2": "/out/libraries/lib2",
		}, s.Libraries())
		assert.Equal(t, []string{"-- header comment", "", "TIMEBASE = NS"}, s.otherLines)
	})

	t.Run("trailing comment is stripped from the path", func(t *testing.T) {
		s := parseSetupContents("work : /out/work # managed\n")
		path, ok := s.Get("work")
		require.True(t, ok)
		assert.Equal(t, "/out/work ", path)
	})

	t.Run("duplicate names are last write wins", func(t *testing.T) {
		s := parseSetupContents("work : /old\nwork : /new\n")
		path, _ := s.Get("work")
		assert.Equal(t, "/new", path)
	})

	t.Run("malformed definition lines degrade to other lines", func(t *testing.T) {
		s := parseSetupContents("not-a-library-name : /x\nWORK > DEFAULT\n")
		assert.Empty(t, s.Libraries()["not-a-library-name"])
		assert.Contains(t, s.otherLines, "WORK > DEFAULT")
	})
}

func TestSetupFileWrite(t *testing.T) {
	t.Run("definitions come after preserved lines, sorted by name", func(t *testing.T) {
		s := NewSetupFile()
		s.otherLines = []string{"-- header", ""}
		s.Set("zebra", "/z")
		s.Set("alpha", "/a")

		assert.Equal(t, "-- header\n\nalpha : /a\nzebra : /z\n", s.String())
	})

	t.Run("empty file renders a single newline", func(t *testing.T) {
		assert.Equal(t, "\n", NewSetupFile().String())
	})
}

func TestSetupFileRoundTrip(t *testing.T) {
	// Parsing a just-written mapping file and re-writing it must produce
	// byte-identical output.
	path := filepath.Join(t.TempDir(), "synopsys_sim.setup")

	s := NewSetupFile()
	s.otherLines = []string{"-- synopsys_sim.setup", "", "TIMEBASE = NS"}
	s.Set("work", "/out/libraries/work")
	s.Set("ip_lib", "/out/libraries/ip_lib")
	require.NoError(t, s.Write(path))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	reparsed, err := ParseSetupFile(path)
	require.NoError(t, err)
	require.NoError(t, reparsed.Write(path))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	// A second cycle stays stable too.
	reparsed, err = ParseSetupFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), reparsed.String())
}
