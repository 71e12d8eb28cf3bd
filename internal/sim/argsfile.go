package sim

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WriteArgsFile persists an argument vector next to the invocation it
// documents: one token per line, always ending with a trailing newline.
// The file is purely diagnostic and never read back.
func WriteArgsFile(path string, args []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	content := strings.Join(args, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "writing args file %s", path)
	}
	return nil
}
