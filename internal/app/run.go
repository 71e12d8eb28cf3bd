package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hdlrun/hdlrun/internal/ctxlog"
	"github.com/hdlrun/hdlrun/internal/sim"
)

// Run executes the full pipeline: locate the tool, map the libraries,
// compile every source file, then elaborate and run every test.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	simName := a.config.Simulator
	if simName == "" {
		simName = a.project.Simulator
	}
	if simName == "" {
		return fmt.Errorf("no simulator selected: set the project's simulator attribute or pass --simulator")
	}

	outputRoot := a.config.OutputPath
	if outputRoot == "" {
		outputRoot = a.project.OutputPath
	}
	if outputRoot == "" {
		outputRoot = defaultOutputPath
	}
	outputRoot, err := filepath.Abs(outputRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	outputPath := filepath.Join(outputRoot, simName)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output path: %w", err)
	}

	if err := a.project.Resolve(outputPath); err != nil {
		return err
	}

	simulator, err := a.registry.Create(simName, sim.Options{
		OutputPath: outputPath,
		Prefix:     a.config.Prefix,
		SetupFile:  a.config.SetupFile,
		GUI:        a.config.GUI,
		Verbose:    a.config.LogLevel == "debug",
		Runner:     a.runner,
	})
	if err != nil {
		return err
	}
	if a.config.GUI && !simulator.SupportsGUI() {
		return fmt.Errorf("simulator %q does not support GUI mode", simName)
	}
	a.logger.Info("Simulator ready.", "name", simName, "output_path", outputPath)

	if err := simulator.SetupLibraryMapping(ctx, a.project.Libraries); err != nil {
		return fmt.Errorf("failed to set up library mapping: %w", err)
	}
	a.logger.Debug("Library mapping complete.", "libraries", len(a.project.Libraries))

	for _, file := range a.project.Sources {
		argv, err := simulator.CompileSourceFileCommand(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to build compile command: %w", err)
		}
		a.logger.Info("Compiling.", "file", file.Path, "library", file.Library)
		if !a.runner.Run(ctx, argv, outputPath) {
			return fmt.Errorf("compilation failed for %s", file.Path)
		}
	}

	failed := 0
	for _, test := range a.project.Tests {
		testOutput := filepath.Join(outputPath, "tests", sim.EncodeTestName(test.Name))
		a.logger.Info("Running test.", "test", test.Name, "elaborate_only", a.config.ElaborateOnly)
		if simulator.Simulate(ctx, testOutput, test, a.config.ElaborateOnly) {
			a.logger.Info("Test passed.", "test", test.Name)
		} else {
			a.logger.Error("Test failed.", "test", test.Name)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tests failed", failed, len(a.project.Tests))
	}
	a.logger.Info("All tests passed.", "count", len(a.project.Tests))
	return nil
}
