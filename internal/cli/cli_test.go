package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional project path", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"project.hcl"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "project.hcl", cfg.ProjectPath)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("project flag wins over positional", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"--project", "a.hcl", "b.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.ProjectPath)
	})

	t.Run("all options are threaded through", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{
			"--simulator", "vcs",
			"--output-path", "/tmp/out",
			"--prefix", "/tools/bin",
			"--elaborate-only",
			"--log-level", "debug",
			"project.hcl",
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, "vcs", cfg.Simulator)
		assert.Equal(t, "/tmp/out", cfg.OutputPath)
		assert.Equal(t, "/tools/bin", cfg.Prefix)
		assert.True(t, cfg.ElaborateOnly)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("no arguments prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid log format is an exit error", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"--log-format", "xml", "p.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level is an exit error", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"--log-level", "trace", "p.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("gui and elaborate-only are mutually exclusive", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"--gui", "--elaborate-only", "p.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "mutually exclusive")
	})
}
