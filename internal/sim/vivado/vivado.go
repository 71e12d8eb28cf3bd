// Package vivado adapts the Xilinx Vivado simulator: xvlog analyzes
// sources into named libraries, xelab links the snapshot and xsim executes
// it.
package vivado

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/hdlrun/hdlrun/internal/ctxlog"
	"github.com/hdlrun/hdlrun/internal/project"
	"github.com/hdlrun/hdlrun/internal/sim"
)

const name = "vivado"

// Module implements the sim.Module interface for this package.
type Module struct{}

// Register registers the Vivado factory with the registry.
func (m *Module) Register(r *sim.Registry) {
	r.Register(&factory{})
}

type factory struct{}

func (f *factory) Name() string { return name }

// Create locates the vivado install and returns a ready adapter.
func (f *factory) Create(opts sim.Options) (sim.Simulator, error) {
	prefix, err := sim.FindPrefix(name, []string{"vivado"}, opts.Prefix)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		prefix:     prefix,
		outputPath: opts.OutputPath,
		gui:        opts.GUI,
		runner:     opts.Runner,
	}, nil
}

// Simulator drives xvlog, xelab and xsim. Registered libraries are kept in
// registration order because xelab receives one -L flag per library in that
// order.
type Simulator struct {
	prefix     string
	outputPath string
	gui        bool
	runner     sim.Runner

	libraries []*project.Library
}

func (s *Simulator) Name() string { return name }

// SupportsGUI reports true; xsim has a built-in waveform viewer.
func (s *Simulator) SupportsGUI() bool { return true }

// SetupLibraryMapping creates each library directory and records the
// registration order for elaboration. Vivado keeps no mapping file.
func (s *Simulator) SetupLibraryMapping(ctx context.Context, libraries []*project.Library) error {
	for _, lib := range libraries {
		if err := os.MkdirAll(lib.Path, 0o755); err != nil {
			return errors.Wrapf(err, "creating library directory for %q", lib.Name)
		}
	}
	s.libraries = libraries
	return nil
}

// libraryDir is where xvlog places the compiled form of a library.
func (s *Simulator) libraryDir(libraryName string) string {
	return filepath.Join(s.outputPath, "libraries", libraryName)
}

// CompileSourceFileCommand returns the command to compile a single source
// file. Only Verilog dialects are supported.
func (s *Simulator) CompileSourceFileCommand(ctx context.Context, file *project.SourceFile) ([]string, error) {
	if !file.Type.IsAnyVerilog() {
		ctxlog.FromContext(ctx).Error("Unknown file type.", "path", file.Path, "type", file.Type)
		return nil, &sim.CompileError{Path: file.Path, Type: file.Type, Tool: name}
	}
	return s.compileVerilogFileCommand(file)
}

func (s *Simulator) compileVerilogFileCommand(file *project.SourceFile) ([]string, error) {
	preprocessedPath := filepath.Join(filepath.Dir(s.outputPath), "preprocessed")
	outputDir := filepath.Join(preprocessedPath, sim.HashString(filepath.Dir(file.Path)))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating preprocessing directory for %s", file.Path)
	}

	base := strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))

	args := []string{"-sv"}
	args = append(args, "-work", fmt.Sprintf("%s=%s", file.Library, s.libraryDir(file.Library)))
	args = append(args, file.Options("xvlog_flags")...)
	for _, dir := range file.IncludeDirs {
		args = append(args, "-i", dir)
	}
	for _, key := range sim.SortedDefineNames(file.Defines) {
		args = append(args, "-d", fmt.Sprintf("%s=%s", key, sim.EscapeDefineValue(file.Defines[key])))
	}
	args = append(args, "-i", filepath.Dir(file.Path))
	args = append(args, file.Path)
	args = append(args, "-log", filepath.Join(s.outputPath, fmt.Sprintf("xvlog_%s.log", base)))

	argsFile := filepath.Join(s.outputPath, fmt.Sprintf("xvlog_%s.args", file.Library))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		return nil, err
	}
	return append([]string{filepath.Join(s.prefix, "xvlog")}, args...), nil
}

// elaborate links the test's top-level unit into a simulation snapshot.
// Every registered library is passed as an explicit -L name=path search
// path, in registration order.
func (s *Simulator) elaborate(ctx context.Context, test *project.TestConfig) bool {
	logger := ctxlog.FromContext(ctx)

	var args []string
	for _, lib := range s.libraries {
		args = append(args, "-L", fmt.Sprintf("%s=%s", lib.Name, s.libraryDir(lib.Name)))
	}
	args = append(args, test.Library+"."+test.Top)
	args = append(args, "-log", filepath.Join(s.outputPath, fmt.Sprintf("xelab_%s.log", test.Top)))

	argsFile := filepath.Join(s.outputPath, fmt.Sprintf("xelab_%s.args", test.Top))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		logger.Error("Failed to write args file.", "path", argsFile, "error", err)
		return false
	}

	argv := append([]string{filepath.Join(s.prefix, "xelab")}, args...)
	return s.runner.Run(ctx, argv, s.outputPath)
}

// Simulate elaborates the snapshot and, unless elaborateOnly is set, runs
// xsim with the test-selection plusargs. GUI mode opens the waveform viewer
// instead of running in batch.
func (s *Simulator) Simulate(ctx context.Context, outputPath string, test *project.TestConfig, elaborateOnly bool) bool {
	logger := ctxlog.FromContext(ctx)
	testName := sim.EncodeTestName(test.Name)

	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		logger.Error("Failed to create test directory.", "path", outputPath, "error", err)
		return false
	}
	if !s.elaborate(ctx, test) {
		return false
	}
	if elaborateOnly {
		return true
	}

	var args []string
	if s.gui {
		args = append(args, "-gui")
	}
	args = append(args, "-runall")
	args = append(args, "-testplusarg", "enabled_test_cases="+test.TestCase())
	args = append(args, "-testplusarg", "output_path="+outputPath+"/")
	args = append(args, test.Library+"."+test.Top)
	args = append(args, "-log", filepath.Join(outputPath, "xsim.log"))

	argsFile := filepath.Join(outputPath, fmt.Sprintf("xsim_%s.args", testName))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		logger.Error("Failed to write args file.", "path", argsFile, "error", err)
		return false
	}

	argv := append([]string{filepath.Join(s.prefix, "xsim")}, args...)
	return s.runner.Run(ctx, argv, s.outputPath)
}
