// Package iverilog adapts the Icarus Verilog simulator: iverilog compiles
// and elaborates, vvp executes the elaborated image.
package iverilog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hdlrun/hdlrun/internal/ctxlog"
	"github.com/hdlrun/hdlrun/internal/project"
	"github.com/hdlrun/hdlrun/internal/sim"
)

const name = "iverilog"

// Module implements the sim.Module interface for this package.
type Module struct{}

// Register registers the Icarus Verilog factory with the registry.
func (m *Module) Register(r *sim.Registry) {
	r.Register(&factory{})
}

type factory struct{}

func (f *factory) Name() string { return name }

// Create locates the iverilog binary and returns a ready adapter.
func (f *factory) Create(opts sim.Options) (sim.Simulator, error) {
	prefix, err := sim.FindPrefix(name, []string{"iverilog"}, opts.Prefix)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		prefix:     prefix,
		outputPath: opts.OutputPath,
		runner:     opts.Runner,
	}, nil
}

// Simulator drives iverilog and vvp. The accumulated source-file and flag
// lists exist only to pass the compile worklist to the elaboration step.
type Simulator struct {
	prefix     string
	outputPath string
	runner     sim.Runner

	sourceFiles    []string
	compileOptions []string
}

func (s *Simulator) Name() string { return name }

// SupportsGUI reports false; Icarus has no interactive viewer of its own.
func (s *Simulator) SupportsGUI() bool { return false }

// SetupLibraryMapping creates each library directory. Icarus keeps no
// mapping file, so registration is directory creation only and naturally
// idempotent.
func (s *Simulator) SetupLibraryMapping(ctx context.Context, libraries []*project.Library) error {
	for _, lib := range libraries {
		if err := os.MkdirAll(lib.Path, 0o755); err != nil {
			return errors.Wrapf(err, "creating library directory for %q", lib.Name)
		}
	}
	return nil
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

// compileVerilogFileCommand preprocesses the file into a directory derived
// from a hash of its parent, so files sharing a parent share output.
func (s *Simulator) compileVerilogFileCommand(file *project.SourceFile) ([]string, error) {
	preprocessedPath := filepath.Join(filepath.Dir(s.outputPath), "preprocessed")
	outputDir := filepath.Join(preprocessedPath, sim.HashString(filepath.Dir(file.Path)))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating preprocessing directory for %s", file.Path)
	}
	outputPath := filepath.Join(outputDir, filepath.Base(file.Path))
	s.sourceFiles = append(s.sourceFiles, outputPath)
	s.compileOptions = append(s.compileOptions, file.Options("iverilog_flags")...)

	args := []string{"-E", "-g2012", "-o", outputPath}
	args = append(args, file.Options("iverilog_flags")...)
	for _, dir := range file.IncludeDirs {
		args = append(args, "-I", dir)
	}
	for _, key := range sim.SortedDefineNames(file.Defines) {
		args = append(args, "-D", fmt.Sprintf("%s=%s", key, sim.EscapeDefineValue(file.Defines[key])))
	}
	args = append(args, "-I", filepath.Dir(file.Path))
	args = append(args, file.Path)

	argsFile := filepath.Join(s.outputPath,
		fmt.Sprintf("iverilog_compile_verilog_file_%s.args", file.Library))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		return nil, err
	}
	return append([]string{filepath.Join(s.prefix, "iverilog")}, args...), nil
}

// elaborate links the accumulated compilation units into one vvp image.
func (s *Simulator) elaborate(ctx context.Context, outputPath, targetName string) bool {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		logger.Error("Failed to create elaboration directory.", "path", outputPath, "error", err)
		return false
	}

	args := []string{"-g2012", "-o", filepath.Join(outputPath, targetName)}
	args = append(args, s.compileOptions...)
	args = append(args, s.sourceFiles...)

	argsFile := filepath.Join(s.outputPath, fmt.Sprintf("iverilog_elaborate_%s.args", targetName))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		logger.Error("Failed to write args file.", "path", argsFile, "error", err)
		return false
	}

	argv := append([]string{filepath.Join(s.prefix, "iverilog")}, args...)
	return s.runner.Run(ctx, argv, outputPath)
}

// Simulate elaborates the test image and, unless elaborateOnly is set, runs
// it through vvp with the test-selection plusargs.
func (s *Simulator) Simulate(ctx context.Context, outputPath string, test *project.TestConfig, elaborateOnly bool) bool {
	testName := sim.EncodeTestName(test.Name)
	image := testName + ".vvp"

	if !s.elaborate(ctx, outputPath, image) {
		return false
	}
	if elaborateOnly {
		return true
	}

	testCase := test.TestCase()
	args := []string{filepath.Join(outputPath, image)}
	args = append(args, test.Options("vvp_flags")...)
	args = append(args, "+"+testCase)
	args = append(args, "+enabled_test_cases="+testCase)
	args = append(args, "+output_path="+outputPath)

	argsFile := filepath.Join(outputPath, fmt.Sprintf("vvp_%s.args", testName))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to write args file.", "path", argsFile, "error", err)
		return false
	}

	argv := append([]string{filepath.Join(s.prefix, "vvp")}, args...)
	return s.runner.Run(ctx, argv, outputPath)
}
