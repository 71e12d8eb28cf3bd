package vivado

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdlrun/hdlrun/internal/project"
	"github.com/hdlrun/hdlrun/internal/sim"
	"github.com/hdlrun/hdlrun/internal/testutil"
)

func newTestSimulator(t *testing.T, gui bool) (*Simulator, *testutil.FakeRunner) {
	t.Helper()

	runner := &testutil.FakeRunner{}
	s, err := (&factory{}).Create(sim.Options{
		OutputPath: filepath.Join(t.TempDir(), "out", "vivado"),
		Prefix:     "/opt/xilinx/bin",
		GUI:        gui,
		Runner:     runner,
	})
	require.NoError(t, err)
	return s.(*Simulator), runner
}

func TestCompileVerilogFileCommand(t *testing.T) {
	s, _ := newTestSimulator(t, false)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "foo.sv")

	argv, err := s.CompileSourceFileCommand(context.Background(), &project.SourceFile{
		Path:        src,
		Type:        project.FileTypeSystemVerilog,
		Library:     "work",
		IncludeDirs: []string{"/src/inc"},
		Defines:     map[string]string{"WIDTH": "8", "DEPTH": "4"},
	})
	require.NoError(t, err)

	expected := []string{
		"/opt/xilinx/bin/xvlog",
		"-sv",
		"-work", "work=" + filepath.Join(s.outputPath, "libraries", "work"),
		"-i", "/src/inc",
		"-d", "DEPTH=4",
		"-d", "WIDTH=8",
		"-i", srcDir,
		src,
		"-log", filepath.Join(s.outputPath, "xvlog_foo.log"),
	}
	if diff := cmp.Diff(expected, argv); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(s.outputPath, "xvlog_work.args"))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(expected[1:], "\n")+"\n", string(data))
}

func TestCompileRejectsUnknownType(t *testing.T) {
	s, _ := newTestSimulator(t, false)

	_, err := s.CompileSourceFileCommand(context.Background(), &project.SourceFile{
		Path: "/src/pkg.vhd",
		Type: project.FileTypeVHDL,
	})

	var compileErr *sim.CompileError
	require.ErrorAs(t, err, &compileErr)
}

func TestSimulate(t *testing.T) {
	libraries := []*project.Library{
		{Name: "work"},
		{Name: "ip_lib"},
	}
	test := &project.TestConfig{Name: "work.tb.smoke", Library: "work", Top: "tb"}

	setupLibraries := func(t *testing.T, s *Simulator) {
		for _, lib := range libraries {
			lib.Path = filepath.Join(t.TempDir(), lib.Name)
		}
		require.NoError(t, s.SetupLibraryMapping(context.Background(), libraries))
	}

	t.Run("elaboration passes -L per library in registration order", func(t *testing.T) {
		s, runner := newTestSimulator(t, false)
		setupLibraries(t, s)

		require.True(t, s.Simulate(context.Background(), filepath.Join(t.TempDir(), "t"), test, true))
		require.Equal(t, []string{"xelab"}, runner.Binaries())

		elab := runner.Calls()[0]
		expected := []string{
			"/opt/xilinx/bin/xelab",
			"-L", "work=" + filepath.Join(s.outputPath, "libraries", "work"),
			"-L", "ip_lib=" + filepath.Join(s.outputPath, "libraries", "ip_lib"),
			"work.tb",
			"-log", filepath.Join(s.outputPath, "xelab_tb.log"),
		}
		if diff := cmp.Diff(expected, elab.Argv); diff != "" {
			t.Fatalf("argv mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("batch run invokes xsim with testplusargs", func(t *testing.T) {
		s, runner := newTestSimulator(t, false)
		setupLibraries(t, s)
		testOut := filepath.Join(t.TempDir(), "t")

		require.True(t, s.Simulate(context.Background(), testOut, test, false))
		require.Equal(t, []string{"xelab", "xsim"}, runner.Binaries())

		run := runner.Calls()[1]
		assert.Equal(t, "/opt/xilinx/bin/xsim", run.Argv[0])
		assert.Contains(t, run.Argv, "-runall")
		assert.Contains(t, run.Argv, "enabled_test_cases=smoke")
		assert.Contains(t, run.Argv, "output_path="+testOut+"/")
		assert.Contains(t, run.Argv, "work.tb")
		assert.NotContains(t, run.Argv, "-gui")

		assert.FileExists(t, filepath.Join(testOut, "xsim_work.tb.smoke_.args"))
	})

	t.Run("gui mode prepends -gui", func(t *testing.T) {
		s, runner := newTestSimulator(t, true)
		setupLibraries(t, s)

		require.True(t, s.Simulate(context.Background(), filepath.Join(t.TempDir(), "t"), test, false))
		run := runner.Calls()[1]
		assert.Equal(t, "-gui", run.Argv[1])
	})
}
