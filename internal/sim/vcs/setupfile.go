package vcs

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// libDefineRe recognizes a library definition line: a name, a colon, a path
// that may carry a trailing '#' comment. Anything else is an "other line".
var libDefineRe = regexp.MustCompile(`^\s*([a-zA-Z0-9_]+)\s*:\s*(.*?)(?:#|$)`)

// SetupFile models a synopsys_sim.setup file. Library definitions are kept
// as structured name→path mappings; every other line, including blank
// lines, is preserved verbatim and rewritten unchanged on every save.
// Merging happens only at write time: other lines first, then definitions
// sorted by name.
type SetupFile struct {
	libraries  map[string]string
	otherLines []string
}

// NewSetupFile returns an empty SetupFile.
func NewSetupFile() *SetupFile {
	return &SetupFile{libraries: make(map[string]string)}
}

// ParseSetupFile reads and parses the named setup file.
func ParseSetupFile(path string) (*SetupFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading setup file %s", path)
	}
	return parseSetupContents(string(data)), nil
}

// parseSetupContents splits contents into library definitions (last write
// wins on duplicate names) and preserved lines. Malformed definition lines
// never raise; they degrade to preserved lines.
func parseSetupContents(contents string) *SetupFile {
	s := NewSetupFile()
	for _, line := range splitLines(contents) {
		match := libDefineRe.FindStringSubmatch(line)
		if match == nil {
			s.otherLines = append(s.otherLines, line)
			continue
		}
		s.libraries[match[1]] = match[2]
	}
	return s
}

// Set inserts or updates a library mapping.
func (s *SetupFile) Set(name, path string) {
	s.libraries[name] = path
}

// Get returns the mapped path for name.
func (s *SetupFile) Get(name string) (string, bool) {
	path, ok := s.libraries[name]
	return path, ok
}

// Libraries returns a copy of the name→path mappings.
func (s *SetupFile) Libraries() map[string]string {
	out := make(map[string]string, len(s.libraries))
	for name, path := range s.libraries {
		out[name] = path
	}
	return out
}

// String renders the file: preserved lines first and unchanged, then every
// library definition as "name : path" sorted lexicographically by name,
// terminated by a trailing newline.
func (s *SetupFile) String() string {
	names := make([]string, 0, len(s.libraries))
	for name := range s.libraries {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(s.otherLines)+len(names))
	lines = append(lines, s.otherLines...)
	for _, name := range names {
		lines = append(lines, name+" : "+s.libraries[name])
	}
	return strings.Join(lines, "\n") + "\n"
}

// Write persists the rendered file to path.
func (s *SetupFile) Write(path string) error {
	if err := os.WriteFile(path, []byte(s.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing setup file %s", path)
	}
	return nil
}

// splitLines splits contents into lines the way the file was written: a
// single trailing newline does not produce an empty final line, so a
// parse→write cycle is byte stable.
func splitLines(contents string) []string {
	contents = strings.TrimSuffix(contents, "\n")
	if contents == "" {
		return nil
	}
	return strings.Split(contents, "\n")
}
