// Package config resolves command-line arguments and the optional YAML file
// into an immutable run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultInputDir is processed when no path argument is given.
const DefaultInputDir = "public/images"

// File is the on-disk configuration. Every field is optional.
type File struct {
	InputDir   string   `yaml:"input_dir"`
	Exclude    []string `yaml:"exclude"`
	Extensions []string `yaml:"extensions"`
	Workers    int      `yaml:"workers"`
}

// Defaults returns the built-in configuration.
func Defaults() File {
	return File{
		InputDir:   DefaultInputDir,
		Exclude:    []string{"converted", "processed", "node_modules"},
		Extensions: []string{".jpg", ".jpeg", ".png", ".tiff", ".tif"},
		Workers:    1,
	}
}

// Load reads a YAML file on top of Defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks field values.
func (f *File) Validate() error {
	if f.InputDir == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if len(f.Extensions) == 0 {
		return fmt.Errorf("extensions must list at least one extension")
	}
	for _, ext := range f.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
		switch strings.ToLower(ext) {
		case FormatWebP.Ext(), FormatAVIF.Ext():
			return fmt.Errorf("extension %q is an output format and cannot be a source", ext)
		}
	}
	for _, name := range f.Exclude {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("exclude entry %q must be a single directory name", name)
		}
	}
	if f.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", f.Workers)
	}
	return nil
}

// Run is the per-invocation configuration. Build it with NewRun; the filter
// sets cannot be changed afterwards.
type Run struct {
	TargetPath string
	Formats    FormatSet
	Workers    int

	exclude    map[string]bool
	extensions map[string]bool
}

// NewRun combines a resolved target with the file configuration.
func NewRun(target Target, f File) (Run, error) {
	if err := f.Validate(); err != nil {
		return Run{}, err
	}
	if target.Formats.Empty() {
		return Run{}, fmt.Errorf("%w: no output format requested", ErrInvalidFormat)
	}

	r := Run{
		TargetPath: target.Path,
		Formats:    target.Formats,
		Workers:    f.Workers,
		exclude:    make(map[string]bool, len(f.Exclude)),
		extensions: make(map[string]bool, len(f.Extensions)),
	}
	for _, name := range f.Exclude {
		r.exclude[name] = true
	}
	for _, ext := range f.Extensions {
		r.extensions[strings.ToLower(ext)] = true
	}
	return r, nil
}

// Excludes reports whether a directory with this name is skipped.
func (r Run) Excludes(dirName string) bool {
	return r.exclude[dirName]
}

// Supports reports whether path has a supported extension, ignoring case.
func (r Run) Supports(path string) bool {
	return r.extensions[strings.ToLower(filepath.Ext(path))]
}

// ExcludedNames returns the excluded directory names, sorted.
func (r Run) ExcludedNames() []string {
	return sortedKeys(r.exclude)
}

// Extensions returns the supported extensions, sorted.
func (r Run) Extensions() []string {
	return sortedKeys(r.extensions)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var (
	ErrInvalidTarget = errors.New("target is neither a file nor a directory")
	ErrTooManyArgs   = errors.New("too many arguments")
)

// Target is the outcome of argument resolution.
type Target struct {
	Path    string
	Formats FormatSet
}

// ResolveArgs maps positional arguments to a target:
//
//	()                 -> defaultDir, both
//	(format)           -> defaultDir, format
//	(path)             -> path, both
//	(path, format)     -> path, format
func ResolveArgs(args []string, defaultDir string) (Target, error) {
	t := Target{Path: defaultDir, Formats: BothFormats}

	switch len(args) {
	case 0:
	case 1:
		if set, err := ParseFormatSet(args[0]); err == nil {
			t.Formats = set
		} else {
			t.Path = args[0]
		}
	case 2:
		set, err := ParseFormatSet(args[1])
		if err != nil {
			return Target{}, err
		}
		t.Path = args[0]
		t.Formats = set
	default:
		return Target{}, fmt.Errorf("%w: expected at most [path] [format], got %d", ErrTooManyArgs, len(args))
	}

	abs, err := filepath.Abs(t.Path)
	if err != nil {
		return Target{}, fmt.Errorf("resolve %s: %w", t.Path, err)
	}
	t.Path = abs
	return t, nil
}

// TargetKind tells whether the target is a single file or a tree.
type TargetKind int

const (
	TargetFile TargetKind = iota + 1
	TargetDir
)

// CheckTarget stats path and classifies it.
func CheckTarget(path string) (TargetKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidTarget, path, err)
	}
	switch {
	case info.Mode().IsRegular():
		return TargetFile, nil
	case info.IsDir():
		return TargetDir, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidTarget, path)
	}
}
