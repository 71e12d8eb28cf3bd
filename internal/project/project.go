// Package project defines the format-agnostic model of an HDL test project:
// logical libraries, source files and test configurations. The model is the
// single input every simulator adapter works from.
package project

import (
	"path/filepath"
	"strings"
)

// FileType identifies the HDL dialect of a source file.
type FileType string

const (
	FileTypeVerilog       FileType = "verilog"
	FileTypeSystemVerilog FileType = "systemverilog"
	FileTypeVHDL          FileType = "vhdl"
	FileTypeUnknown       FileType = "unknown"
)

// IsAnyVerilog reports whether the type is plain Verilog or SystemVerilog.
func (t FileType) IsAnyVerilog() bool {
	return t == FileTypeVerilog || t == FileTypeSystemVerilog
}

// DetectFileType maps a file name to its HDL dialect by extension.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".v":
		return FileTypeVerilog
	case ".sv", ".svh":
		return FileTypeSystemVerilog
	case ".vhd", ".vhdl":
		return FileTypeVHDL
	default:
		return FileTypeUnknown
	}
}

// Library is a named logical library mapped to a filesystem directory.
// Names are unique within a project; many source files may belong to one
// library.
type Library struct {
	Name string
	Path string
}

// SourceFile describes one HDL source file together with the per-file
// options the compile command builders consume.
type SourceFile struct {
	Path        string
	Type        FileType
	Library     string
	IncludeDirs []string

	// Defines maps macro names to values. A later definition of the same
	// name overrides an earlier one at load time.
	Defines map[string]string

	// VHDLStandard is the declared VHDL revision ("1993", "2002", "2008",
	// "2019"). Empty means the tool default.
	VHDLStandard string

	// Flags holds per-tool option lists keyed by option name, for example
	// "iverilog_flags" or "vlogan_flags".
	Flags map[string][]string
}

// Options returns the per-file flag list registered under key, or nil.
func (f *SourceFile) Options(key string) []string {
	if f.Flags == nil {
		return nil
	}
	return f.Flags[key]
}

// TestConfig describes a single test image: the library and top-level unit
// to elaborate plus the simulation options for the run step.
type TestConfig struct {
	Name     string
	Library  string
	Top      string
	Coverage bool

	// SimFlags holds per-tool simulation option lists keyed by option name,
	// for example "vvp_flags" or "simv_flags".
	SimFlags map[string][]string
}

// Options returns the simulation flag list registered under key, or nil.
func (c *TestConfig) Options(key string) []string {
	if c.SimFlags == nil {
		return nil
	}
	return c.SimFlags[key]
}

// TestCase returns the test-case component of the test name, the part after
// the last dot. Simulators pass it to the image as a test-selection plusarg.
func (c *TestConfig) TestCase() string {
	parts := strings.Split(c.Name, ".")
	return parts[len(parts)-1]
}

// Project is the aggregated view of every .hcl file that was loaded.
type Project struct {
	// Simulator names the adapter to use. The CLI flag overrides it.
	Simulator string

	// OutputPath is the root directory for compiled libraries, argument
	// files and test working directories.
	OutputPath string

	Libraries []*Library
	Sources   []*SourceFile
	Tests     []*TestConfig
}

// Library returns the library with the given name, or nil.
func (p *Project) Library(name string) *Library {
	for _, lib := range p.Libraries {
		if lib.Name == name {
			return lib
		}
	}
	return nil
}
