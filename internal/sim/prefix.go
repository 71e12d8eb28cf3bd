package sim

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindPrefix resolves the install directory of a tool. The search order is:
// the explicit override, the HDLRUN_<TOOL>_PATH environment variable, then a
// PATH scan over the candidate executable base names. The directory of the
// first match wins. No side effects.
func FindPrefix(tool string, candidates []string, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	envVar := "HDLRUN_" + strings.ToUpper(tool) + "_PATH"
	if prefix := os.Getenv(envVar); prefix != "" {
		return prefix, nil
	}

	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return filepath.Dir(abs), nil
	}

	return "", &ToolNotFoundError{Tool: tool, Candidates: candidates}
}
