package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdlrun/hdlrun/internal/project"
)

type stubSimulator struct {
	runner Runner
}

func (s *stubSimulator) Name() string      { return "stub" }
func (s *stubSimulator) SupportsGUI() bool { return false }
func (s *stubSimulator) SetupLibraryMapping(ctx context.Context, libraries []*project.Library) error {
	return nil
}
func (s *stubSimulator) CompileSourceFileCommand(ctx context.Context, file *project.SourceFile) ([]string, error) {
	return nil, nil
}
func (s *stubSimulator) Simulate(ctx context.Context, outputPath string, test *project.TestConfig, elaborateOnly bool) bool {
	return true
}

type stubFactory struct {
	lastOpts Options
}

func (f *stubFactory) Name() string { return "stub" }
func (f *stubFactory) Create(opts Options) (Simulator, error) {
	f.lastOpts = opts
	return &stubSimulator{runner: opts.Runner}, nil
}

func TestRegistry(t *testing.T) {
	t.Run("create returns the registered simulator", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubFactory{})

		s, err := r.Create("stub", Options{})
		require.NoError(t, err)
		assert.Equal(t, "stub", s.Name())
	})

	t.Run("unknown name lists the available simulators", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubFactory{})

		_, err := r.Create("ghdl", Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown simulator "ghdl"`)
		assert.Contains(t, err.Error(), "stub")
	})

	t.Run("create defaults the runner", func(t *testing.T) {
		r := NewRegistry()
		factory := &stubFactory{}
		r.Register(factory)

		_, err := r.Create("stub", Options{})
		require.NoError(t, err)
		assert.NotNil(t, factory.lastOpts.Runner)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubFactory{})
		assert.Panics(t, func() { r.Register(&stubFactory{}) })
	})
}
