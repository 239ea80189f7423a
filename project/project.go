package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/recognizer/ebnf/grammar"
)

// FileName is the project file looked up by Load.
const FileName = "recognizer.yaml"

// ErrNotFound is returned when no project file exists in the directory or
// any of its parents.
var ErrNotFound = errors.New("no " + FileName + " found")

// Project describes a grammar and the files it recognizes.
type Project struct {
	RootDir    string `yaml:"-"`
	ConfigFile string `yaml:"-"`

	// Grammar is the EBNF file, relative to RootDir.
	Grammar string `yaml:"grammar"`
	// Start is the production parsing begins with.
	Start string `yaml:"start"`
	// Sources are file name patterns matched against files below RootDir.
	Sources []string `yaml:"sources"`

	// Ignore lists token kinds dropped between lexing and parsing.
	Ignore         []string `yaml:"ignore"`
	Skip           []string `yaml:"skip"`
	SkipIfOneChild []string `yaml:"skip_if_one_child"`
	Recover        []string `yaml:"recover"`
}

// Load finds the project file in the current directory or above.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom finds the project file in dir or the closest parent containing
// one.
func LoadFrom(dir string) (*Project, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// Find returns the path of the project file in dir or the closest parent
// containing one.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		path := filepath.Join(abs, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w in %s or its parents", ErrNotFound, dir)
		}
		abs = parent
	}
}

// LoadFile reads a project file, applies defaults and validates it.
func LoadFile(path string) (*Project, error) {
	p, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("failed to parse project file %q: %w", path, err)
	}
	return p, nil
}

// ReadFile reads a project file and applies defaults without validating,
// so callers can fill in missing fields first.
func ReadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file %q: %w", path, err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse project file %q: %w", path, err)
	}
	p.ConfigFile = path
	p.RootDir = filepath.Dir(path)
	return p, nil
}

// Parse decodes project YAML, applies defaults and validates the result.
func Parse(data []byte) (*Project, error) {
	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Decode decodes project YAML and applies defaults.
func Decode(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	ApplyDefaults(&p)
	return &p, nil
}

// GrammarPath returns the grammar file resolved against RootDir.
func (p *Project) GrammarPath() string {
	if filepath.IsAbs(p.Grammar) || p.RootDir == "" {
		return p.Grammar
	}
	return filepath.Join(p.RootDir, p.Grammar)
}

func (p *Project) Policy() grammar.Policy {
	return grammar.Policy{
		Skip:           p.Skip,
		SkipIfOneChild: p.SkipIfOneChild,
		Recover:        p.Recover,
	}
}

// Compile loads the project grammar and applies the rule policies.
func (p *Project) Compile() (*grammar.Compiled, error) {
	c, err := grammar.Load(p.GrammarPath(), p.Start)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(p.Policy()); err != nil {
		return nil, fmt.Errorf("%s: %w", p.ConfigFile, err)
	}
	return c, nil
}

// SourceFiles returns the files below RootDir whose names match one of the
// source patterns. Hidden directories are not searched.
func (p *Project) SourceFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(p.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != p.RootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if p.IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sources in %s: %w", p.RootDir, err)
	}
	return files, nil
}

// IsSource reports whether the base name of path matches a source pattern.
func (p *Project) IsSource(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range p.Sources {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
