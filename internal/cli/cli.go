// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hdlrun/hdlrun/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("hdlrun", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
hdlrun - compile, elaborate and run HDL tests through a simulator backend.

Usage:
  hdlrun [options] [PROJECT_PATH]

Arguments:
  PROJECT_PATH
    Path to a single .hcl project file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	projectFlag := flagSet.String("project", "", "Path to the project file or directory.")
	pFlag := flagSet.String("p", "", "Path to the project file or directory (shorthand).")
	outputFlag := flagSet.String("output-path", "", "Root directory for generated output. Defaults to the project's output_path, then 'hdlrun_out'.")
	simulatorFlag := flagSet.String("simulator", "", "Simulator backend to use. Overrides the project's simulator attribute.")
	prefixFlag := flagSet.String("prefix", "", "Directory containing the simulator binaries. Skips the PATH search.")
	setupFileFlag := flagSet.String("setup-file", "", "Library mapping file to use, for simulators that maintain one.")
	guiFlag := flagSet.Bool("gui", false, "Launch the simulator's interactive viewer instead of running in batch.")
	elaborateOnlyFlag := flagSet.Bool("elaborate-only", false, "Stop after elaboration; never invoke the simulation binary.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *projectFlag != "" {
		path = *projectFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *guiFlag && *elaborateOnlyFlag {
		return nil, false, &ExitError{Code: 2, Message: "--gui and --elaborate-only are mutually exclusive"}
	}

	config, err := app.NewConfig(app.Config{
		ProjectPath:   path,
		OutputPath:    *outputFlag,
		Simulator:     *simulatorFlag,
		Prefix:        *prefixFlag,
		SetupFile:     *setupFileFlag,
		GUI:           *guiFlag,
		ElaborateOnly: *elaborateOnlyFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
