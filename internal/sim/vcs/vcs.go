// Package vcs adapts the Synopsys VCS simulator family: vhdlan/vlogan
// analyze sources into named libraries, vcs elaborates the simv image and
// simv executes it. Library mappings are persisted in a synopsys_sim.setup
// file.
package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	pkgerrors "github.com/pkg/errors"

	"github.com/hdlrun/hdlrun/internal/ctxlog"
	"github.com/hdlrun/hdlrun/internal/fsutil"
	"github.com/hdlrun/hdlrun/internal/project"
	"github.com/hdlrun/hdlrun/internal/sim"
)

const name = "vcs"

// SetupFileEnvVar optionally supplies a pre-existing setup file. When set,
// its contents seed the working setup file before first use.
const SetupFileEnvVar = "SYNOPSYS_SIM_SETUP"

// Module implements the sim.Module interface for this package.
type Module struct{}

// Register registers the VCS factory with the registry.
func (m *Module) Register(r *sim.Registry) {
	r.Register(&factory{})
}

type factory struct{}

func (f *factory) Name() string { return name }

// Create locates the vcs binary and prepares the working setup file.
func (f *factory) Create(opts sim.Options) (sim.Simulator, error) {
	prefix, err := sim.FindPrefix(name, []string{"vcs"}, opts.Prefix)
	if err != nil {
		return nil, err
	}

	setupFile := opts.SetupFile
	if setupFile == "" {
		setupFile = filepath.Join(opts.OutputPath, "synopsys_sim.setup")
	}

	s := &Simulator{
		prefix:     prefix,
		outputPath: opts.OutputPath,
		setupFile:  setupFile,
		gui:        opts.GUI,
		verbose:    opts.Verbose,
		runner:     opts.Runner,
	}
	if err := s.initSetupFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Simulator drives vhdlan, vlogan, vcs and simv.
type Simulator struct {
	prefix     string
	outputPath string
	setupFile  string
	gui        bool
	verbose    bool
	runner     sim.Runner
}

func (s *Simulator) Name() string { return name }

// SupportsGUI reports true; simv can launch the DVE/Verdi viewer.
func (s *Simulator) SupportsGUI() bool { return true }

// initSetupFile seeds the working setup file from the environment when
// requested and writes the default header when no file exists yet.
func (s *Simulator) initSetupFile() error {
	if err := os.MkdirAll(filepath.Dir(s.setupFile), 0o755); err != nil {
		return pkgerrors.Wrap(err, "creating setup file directory")
	}

	if seed := os.Getenv(SetupFileEnvVar); seed != "" {
		if err := fsutil.CopyFile(seed, s.setupFile); err != nil {
			return pkgerrors.Wrapf(err, "seeding setup file from $%s", SetupFileEnvVar)
		}
		return nil
	}

	if fsutil.Exists(s.setupFile) {
		return nil
	}
	contents := fmt.Sprintf(`-- synopsys_sim.setup: Defines the locations of compiled libraries.
-- NOTE: the library definitions in this file are rewritten on save, other lines are kept intact
-- WORK > DEFAULT
-- DEFAULT : %s/libraries/work
-- TIMEBASE = NS
`, s.outputPath)
	return pkgerrors.Wrap(os.WriteFile(s.setupFile, []byte(contents), 0o644), "creating setup file")
}

// SetupLibraryMapping creates and maps every logical library in the setup
// file.
func (s *Simulator) SetupLibraryMapping(ctx context.Context, libraries []*project.Library) error {
	setup, err := ParseSetupFile(s.setupFile)
	if err != nil {
		return err
	}
	mapped := setup.Libraries()

	for _, lib := range libraries {
		if err := s.createLibrary(lib.Name, lib.Path, mapped); err != nil {
			return err
		}
	}
	return nil
}

// createLibrary creates the library directory (plus its 64-bit
// subdirectory) and records the mapping. When the library is already mapped
// to the same directory the persisted state is left untouched.
func (s *Simulator) createLibrary(libraryName, libraryPath string, mapped map[string]string) error {
	if err := os.MkdirAll(libraryPath, 0o755); err != nil {
		return pkgerrors.Wrapf(err, "creating library directory for %q", libraryName)
	}
	if err := os.MkdirAll(filepath.Join(libraryPath, "64"), 0o755); err != nil {
		return pkgerrors.Wrapf(err, "creating 64-bit library directory for %q", libraryName)
	}

	if existing, ok := mapped[libraryName]; ok && existing == libraryPath {
		return nil
	}

	setup, err := ParseSetupFile(s.setupFile)
	if err != nil {
		return err
	}
	setup.Set(libraryName, libraryPath)
	return setup.Write(s.setupFile)
}

// CompileSourceFileCommand returns the command to compile a single source
// file with the analyzer matching its dialect.
func (s *Simulator) CompileSourceFileCommand(ctx context.Context, file *project.SourceFile) ([]string, error) {
	switch {
	case file.Type == project.FileTypeVHDL:
		return s.compileVHDLFileCommand(file)
	case file.Type.IsAnyVerilog():
		return s.compileVerilogFileCommand(file)
	default:
		ctxlog.FromContext(ctx).Error("Unknown file type.", "path", file.Path, "type", file.Type)
		return nil, &sim.CompileError{Path: file.Path, Type: file.Type, Tool: name}
	}
}

// vhdlStdOpt maps a declared VHDL revision to the vhdlan switch. VCS has no
// dedicated switches for 2002 and 2019, so those ride on -vhdl08;
// unsupported revisions fall back to the tool default.
func vhdlStdOpt(standard string) string {
	switch standard {
	case "2002", "2008", "2019":
		return "-vhdl08"
	default:
		return ""
	}
}

func (s *Simulator) compileVHDLFileCommand(file *project.SourceFile) ([]string, error) {
	args := []string{"-kdb", "-sparse_mem", "20"}
	if std := vhdlStdOpt(file.VHDLStandard); std != "" {
		args = append(args, std)
	}
	args = append(args, "-work", file.Library)
	args = append(args, "-l", filepath.Join(s.outputPath,
		fmt.Sprintf("vcs_compile_vhdl_file_%s.log", file.Library)))
	if s.verbose {
		args = append(args, "-verbose")
	} else {
		args = append(args, "-q", "-nc")
	}
	args = append(args, file.Options("vhdl_flags")...)
	args = append(args, file.Path)

	argsFile := filepath.Join(s.outputPath,
		fmt.Sprintf("vcs_compile_vhdl_file_%s.args", file.Library))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		return nil, err
	}
	return append([]string{filepath.Join(s.prefix, "vhdlan"), "-full64"}, args...), nil
}

func (s *Simulator) compileVerilogFileCommand(file *project.SourceFile) ([]string, error) {
	args := []string{"-kdb", "-sverilog", "+v2k"}
	args = append(args, "-work", file.Library)
	args = append(args, file.Options("vlogan_flags")...)
	args = append(args, "-l", filepath.Join(s.outputPath,
		fmt.Sprintf("vcs_compile_verilog_file_%s.log", file.Library)))
	if s.verbose {
		args = append(args, "-V", "-notice", "+libverbose")
	} else {
		args = append(args, "-q", "-nc")
	}
	for _, dir := range file.IncludeDirs {
		args = append(args, "+incdir+"+dir)
	}
	for _, key := range sim.SortedDefineNames(file.Defines) {
		args = append(args, fmt.Sprintf("+define+%s=%s", key, sim.EscapeDefineValue(file.Defines[key])))
	}
	args = append(args, "+incdir+"+filepath.Dir(file.Path))
	args = append(args, file.Path)

	argsFile := filepath.Join(s.outputPath,
		fmt.Sprintf("vcs_compile_verilog_file_%s.args", file.Library))
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		return nil, err
	}
	return append([]string{filepath.Join(s.prefix, "vlogan"), "-full64"}, args...), nil
}

// elaborate links the test's top-level unit into outputPath/simv. The setup
// file is copied next to the image so simv resolves the same libraries.
func (s *Simulator) elaborate(ctx context.Context, outputPath string, test *project.TestConfig) bool {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		logger.Error("Failed to create elaboration directory.", "path", outputPath, "error", err)
		return false
	}
	if err := fsutil.CopyFile(s.setupFile, filepath.Join(outputPath, "synopsys_sim.setup")); err != nil {
		logger.Error("Failed to copy setup file.", "path", s.setupFile, "error", err)
		return false
	}

	args := []string{test.Library + "." + test.Top}
	args = append(args, "-o", filepath.Join(outputPath, "simv"))
	args = append(args, "-licqueue")
	if s.verbose {
		args = append(args, "-V", "-notice")
	} else {
		args = append(args, "-q", "-nc")
	}
	args = append(args, "-l", filepath.Join(outputPath, "vcs.log"))
	args = append(args, test.Options("vcs_flags")...)

	argsFile := filepath.Join(outputPath, "vcs.args")
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		logger.Error("Failed to write args file.", "path", argsFile, "error", err)
		return false
	}

	argv := append([]string{filepath.Join(s.prefix, "vcs"), "-full64"}, args...)
	return s.runner.Run(ctx, argv, outputPath)
}

// Simulate elaborates the test image and, unless elaborateOnly is set,
// executes it. In GUI mode simv launches the interactive viewer instead of
// receiving batch test-selection flags; the exit status is still reported
// but the caller owns its interpretation.
func (s *Simulator) Simulate(ctx context.Context, outputPath string, test *project.TestConfig, elaborateOnly bool) bool {
	logger := ctxlog.FromContext(ctx)
	launchGUI := s.gui && !elaborateOnly
	testName := sim.EncodeTestName(test.Name)

	if !s.elaborate(ctx, outputPath, test) {
		return false
	}
	if elaborateOnly {
		return true
	}

	macroFile := filepath.Join(outputPath, "simv.tcl")
	if err := writeUCLIMacro(macroFile, launchGUI); err != nil {
		logger.Error("Failed to write UCLI macro.", "path", macroFile, "error", err)
		return false
	}

	args := slices.Clone(test.Options("simv_flags"))
	if test.Coverage {
		args = append(args, "-cm_name", testName)
	}
	if launchGUI {
		args = append(args, "-gui")
	} else {
		testCase := test.TestCase()
		args = append(args, "+"+testCase)
		args = append(args, "+enabled_test_cases="+testCase)
		args = append(args, "+output_path="+outputPath)
	}

	argsFile := filepath.Join(outputPath, "simv.args")
	if err := sim.WriteArgsFile(argsFile, args); err != nil {
		logger.Error("Failed to write args file.", "path", argsFile, "error", err)
		return false
	}

	argv := append([]string{filepath.Join(outputPath, "simv")}, args...)
	return s.runner.Run(ctx, argv, outputPath)
}

// writeUCLIMacro writes the simv.tcl macro. Batch runs dump a VPD waveform
// before running; the GUI owns dumping itself.
func writeUCLIMacro(path string, launchGUI bool) error {
	var cmds []string
	if !launchGUI {
		cmds = append(cmds, "set fid [dump -file vcdplus.vpd -type VPD]")
		cmds = append(cmds, "dump -fid $fid -depth 0")
	}
	cmds = append(cmds, "run", "quit")

	content := ""
	for _, cmd := range cmds {
		content += cmd + "\n"
	}
	return pkgerrors.Wrapf(os.WriteFile(path, []byte(content), 0o644), "writing UCLI macro %s", path)
}
