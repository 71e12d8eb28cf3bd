// Package app wires the project model, the simulator registry and the
// process runner into the compile → elaborate → simulate pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hdlrun/hdlrun/internal/ctxlog"
	"github.com/hdlrun/hdlrun/internal/project"
	"github.com/hdlrun/hdlrun/internal/sim"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *sim.Registry
	project  *project.Project
	runner   sim.Runner
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry. A nil
// runner selects the default os/exec-backed one; tests inject a fake.
// Passing no modules registers the built-in adapters.
func NewApp(outW io.Writer, appConfig *Config, runner sim.Runner, modules ...sim.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	proj, err := project.Load(ctx, appConfig.ProjectPath)
	if err != nil {
		// A failure to load the project is a fatal startup error.
		panic(fmt.Errorf("failed to load project: %w", err))
	}

	reg := sim.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("Simulator adapters registered.", "names", reg.Names())

	if runner == nil {
		runner = sim.NewExecRunner()
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		project:  proj,
		runner:   runner,
	}
}

// Project returns the loaded project model. This is primarily for testing.
func (a *App) Project() *project.Project {
	return a.project
}
