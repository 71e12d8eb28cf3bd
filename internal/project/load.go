package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hdlrun/hdlrun/internal/ctxlog"
	"github.com/hdlrun/hdlrun/internal/fsutil"
)

// hclProjectFile represents the top-level structure of a project file for decoding.
type hclProjectFile struct {
	Simulator  *string       `hcl:"simulator,optional"`
	OutputPath *string       `hcl:"output_path,optional"`
	Libraries  []*hclLibrary `hcl:"library,block"`
	Sources    []*hclSource  `hcl:"source,block"`
	Tests      []*hclTest    `hcl:"test,block"`
}

// hclLibrary represents a single 'library' block.
type hclLibrary struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path,optional"`
}

// hclSource represents a single 'source' block. Defines and Flags are kept
// as raw expressions and decoded through cty so the user can write plain HCL
// maps without a fixed schema.
type hclSource struct {
	Path        string         `hcl:"path,label"`
	Library     string         `hcl:"library,optional"`
	IncludeDirs []string       `hcl:"include_dirs,optional"`
	Standard    string         `hcl:"standard,optional"`
	Defines     hcl.Expression `hcl:"defines,optional"`
	Flags       hcl.Expression `hcl:"flags,optional"`
}

// hclTest represents a single 'test' block.
type hclTest struct {
	Name     string         `hcl:"name,label"`
	Library  string         `hcl:"library,optional"`
	Top      string         `hcl:"top"`
	Coverage bool           `hcl:"coverage,optional"`
	SimFlags hcl.Expression `hcl:"sim_flags,optional"`
}

// DefaultLibraryName is assumed for source files and tests that do not name
// a library explicitly.
const DefaultLibraryName = "work"

// Load reads one .hcl project file, or every .hcl file under a directory,
// and aggregates the blocks into a single Project. Relative source and
// include paths are resolved against the file that declared them.
func Load(ctx context.Context, path string) (*Project, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s for project files: %w", path, err)
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl project files found under %s", path)
	}
	logger.Debug("Loading project files.", "count", len(files))

	proj := &Project{}
	parser := hclparse.NewParser()
	for _, file := range files {
		if err := mergeProjectFile(proj, parser, file); err != nil {
			return nil, err
		}
	}

	logger.Info("Project loaded.",
		"libraries", len(proj.Libraries),
		"sources", len(proj.Sources),
		"tests", len(proj.Tests))
	return proj, nil
}

// mergeProjectFile parses a single HCL file and appends its blocks to proj.
func mergeProjectFile(proj *Project, parser *hclparse.Parser, filePath string) error {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	var parsed hclProjectFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}

	base := filepath.Dir(filePath)

	if parsed.Simulator != nil {
		proj.Simulator = *parsed.Simulator
	}
	if parsed.OutputPath != nil {
		proj.OutputPath = resolvePath(base, *parsed.OutputPath)
	}

	for _, lib := range parsed.Libraries {
		if proj.Library(lib.Name) != nil {
			return fmt.Errorf("library %q declared more than once", lib.Name)
		}
		libPath := lib.Path
		if libPath != "" {
			libPath = resolvePath(base, libPath)
		}
		proj.Libraries = append(proj.Libraries, &Library{Name: lib.Name, Path: libPath})
	}

	for _, src := range parsed.Sources {
		defines, err := decodeStringMap(src.Defines)
		if err != nil {
			return fmt.Errorf("invalid defines for source %q in %s: %w", src.Path, filePath, err)
		}
		flags, err := decodeFlagsMap(src.Flags)
		if err != nil {
			return fmt.Errorf("invalid flags for source %q in %s: %w", src.Path, filePath, err)
		}

		library := src.Library
		if library == "" {
			library = DefaultLibraryName
		}
		includeDirs := make([]string, 0, len(src.IncludeDirs))
		for _, dir := range src.IncludeDirs {
			includeDirs = append(includeDirs, resolvePath(base, dir))
		}

		srcPath := resolvePath(base, src.Path)
		fileType := DetectFileType(srcPath)
		proj.Sources = append(proj.Sources, &SourceFile{
			Path:         srcPath,
			Type:         fileType,
			Library:      library,
			IncludeDirs:  includeDirs,
			Defines:      defines,
			VHDLStandard: src.Standard,
			Flags:        flags,
		})
	}

	for _, test := range parsed.Tests {
		simFlags, err := decodeFlagsMap(test.SimFlags)
		if err != nil {
			return fmt.Errorf("invalid sim_flags for test %q in %s: %w", test.Name, filePath, err)
		}
		library := test.Library
		if library == "" {
			library = DefaultLibraryName
		}
		proj.Tests = append(proj.Tests, &TestConfig{
			Name:     test.Name,
			Library:  library,
			Top:      test.Top,
			Coverage: test.Coverage,
			SimFlags: simFlags,
		})
	}

	return nil
}

// Resolve finalizes the model against the effective output path: libraries
// without an explicit path land under <outputPath>/libraries/<name>, and
// every library reference from a source or test must name a declared
// library.
func (p *Project) Resolve(outputPath string) error {
	for _, lib := range p.Libraries {
		if lib.Path == "" {
			lib.Path = filepath.Join(outputPath, "libraries", lib.Name)
		}
	}
	for _, src := range p.Sources {
		if p.Library(src.Library) == nil {
			return fmt.Errorf("source %q references undeclared library %q", src.Path, src.Library)
		}
	}
	for _, test := range p.Tests {
		if p.Library(test.Library) == nil {
			return fmt.Errorf("test %q references undeclared library %q", test.Name, test.Library)
		}
	}
	return nil
}

// resolvePath makes path absolute relative to base unless it already is.
func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// decodeStringMap evaluates an HCL expression into a map of strings.
// A nil expression yields a nil map.
func decodeStringMap(expr hcl.Expression) (map[string]string, error) {
	val, err := evalExpr(expr)
	if err != nil || val == cty.NilVal {
		return nil, err
	}
	conv, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("expected a map of strings: %w", err)
	}

	out := make(map[string]string, conv.LengthInt())
	for it := conv.ElementIterator(); it.Next(); {
		key, elem := it.Element()
		out[key.AsString()] = elem.AsString()
	}
	return out, nil
}

// decodeFlagsMap evaluates an HCL expression into per-tool flag lists.
func decodeFlagsMap(expr hcl.Expression) (map[string][]string, error) {
	val, err := evalExpr(expr)
	if err != nil || val == cty.NilVal {
		return nil, err
	}
	conv, err := convert.Convert(val, cty.Map(cty.List(cty.String)))
	if err != nil {
		return nil, fmt.Errorf("expected a map of string lists: %w", err)
	}

	out := make(map[string][]string, conv.LengthInt())
	for it := conv.ElementIterator(); it.Next(); {
		key, list := it.Element()
		var tokens []string
		for lit := list.ElementIterator(); lit.Next(); {
			_, elem := lit.Element()
			tokens = append(tokens, elem.AsString())
		}
		out[key.AsString()] = tokens
	}
	return out, nil
}

// evalExpr evaluates expr without an evaluation context; project files hold
// literal values only.
func evalExpr(expr hcl.Expression) (cty.Value, error) {
	if expr == nil {
		return cty.NilVal, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if val.IsNull() {
		return cty.NilVal, nil
	}
	return val, nil
}
