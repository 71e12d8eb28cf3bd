package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ProjectPath points at one .hcl project file or a directory of them.
	ProjectPath string

	// OutputPath is the root for all generated output. Empty falls back to
	// the project's output_path attribute, then to "hdlrun_out".
	OutputPath string

	// Simulator overrides the project's simulator attribute.
	Simulator string

	// Prefix overrides tool location for the selected simulator.
	Prefix string

	// SetupFile overrides the simulator's library mapping file location.
	SetupFile string

	GUI           bool
	ElaborateOnly bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectPath == "" {
		return nil, errors.New("ProjectPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}

// defaultOutputPath is used when neither the CLI nor the project sets one.
const defaultOutputPath = "hdlrun_out"
