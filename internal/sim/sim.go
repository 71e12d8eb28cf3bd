// Package sim defines the contract between the test pipeline and the
// simulator tool adapters, plus the helpers every adapter shares: tool
// location, process execution, argument-file persistence, output-path
// hashing and test-name encoding.
package sim

import (
	"context"
	"fmt"

	"github.com/hdlrun/hdlrun/internal/project"
)

// Simulator is the capability set one tool family exposes. One concrete
// implementation exists per supported simulator; each keeps its quirks
// (flag spelling, required sub-steps, setup files) localized.
type Simulator interface {
	// Name returns the adapter name, e.g. "vcs".
	Name() string

	// SupportsGUI reports whether the tool can launch an interactive viewer.
	SupportsGUI() bool

	// SetupLibraryMapping creates and registers every logical library.
	// Re-mapping an already-correctly-mapped library is a no-op.
	SetupLibraryMapping(ctx context.Context, libraries []*project.Library) error

	// CompileSourceFileCommand returns the argument vector compiling a
	// single source file, argv[0] being the resolved binary path. The same
	// tokens (minus argv[0]) are persisted to an .args file before the
	// vector is returned. A source kind the tool cannot compile yields a
	// *CompileError.
	CompileSourceFileCommand(ctx context.Context, file *project.SourceFile) ([]string, error)

	// Simulate elaborates the test image in outputPath and, unless
	// elaborateOnly is set, executes it. It reports whether every external
	// process exited zero. A non-zero exit is a result, not an error: the
	// caller decides whether to continue with other tests.
	Simulate(ctx context.Context, outputPath string, test *project.TestConfig, elaborateOnly bool) bool
}

// Options configures the construction of a Simulator instance.
type Options struct {
	// OutputPath is the root directory for compiled output, argument files
	// and logs.
	OutputPath string

	// Prefix overrides tool location. When empty the tool is searched via
	// the HDLRUN_<TOOL>_PATH environment variable and then the PATH.
	Prefix string

	// SetupFile overrides the location of the tool's library mapping file,
	// for tools that maintain one.
	SetupFile string

	// GUI requests interactive mode for tools that support it.
	GUI bool

	// Verbose switches the tools from quiet to verbose output.
	Verbose bool

	// Runner executes external processes. Defaults to NewExecRunner().
	Runner Runner
}

// CompileError signals that a source file's kind has no known compilation
// procedure for the active tool. It is fatal for that file and never
// silently swallowed.
type CompileError struct {
	Path string
	Type project.FileType
	Tool string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s cannot compile %s: unknown file type %q", e.Tool, e.Path, e.Type)
}

// ToolNotFoundError signals that no executable matching any candidate name
// exists on the search path. It is fatal to the caller and not retried.
type ToolNotFoundError struct {
	Tool       string
	Candidates []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("simulator %q not found: no executable among %v on PATH", e.Tool, e.Candidates)
}
