package sim

import (
	"context"
	"os"
	"os/exec"

	"github.com/hdlrun/hdlrun/internal/ctxlog"
)

// Runner executes one external process and waits for it to exit. The only
// contract with the process layer is: argv[0] is an absolute or
// PATH-resolved executable path, the remaining entries are literal tokens,
// and exit code 0 means success. The layer never retries.
type Runner interface {
	Run(ctx context.Context, argv []string, cwd string) bool
}

// execRunner runs commands through os/exec with stdout/stderr passed
// through to the parent process.
type execRunner struct{}

// NewExecRunner returns the default os/exec-backed Runner.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, argv []string, cwd string) bool {
	logger := ctxlog.FromContext(ctx)
	if len(argv) == 0 {
		panic("sim: empty argument vector")
	}
	logger.Debug("Running external command.", "argv", argv, "cwd", cwd)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = cwd
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		logger.Error("External command failed.", "argv0", argv[0], "error", err)
		return false
	}
	return true
}
