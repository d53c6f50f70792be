package redact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

// matchTimeout bounds regexp2 backtracking so a pathological input cannot
// stall the run on a single pattern.
const matchTimeout = 2 * time.Second

// Pattern is one named secret detector. Keywords are lowercase literals used
// by the Aho-Corasick prefilter; a pattern with no keywords is always
// executed.
type Pattern struct {
	Category string
	Regex    string
	Keywords []string

	re *regexp2.Regexp
}

type yamlPattern struct {
	Category string   `yaml:"category"`
	Regex    string   `yaml:"regex"`
	Keywords []string `yaml:"keywords"`
}

type yamlPatternsFile struct {
	Patterns []yamlPattern `yaml:"patterns"`
}

// Loader loads secret patterns from YAML files.
type Loader struct {
	fs fs.FS
}

// NewLoader creates a loader backed by the builtin embedded patterns.
func NewLoader() *Loader {
	return &Loader{fs: builtinPatternsFS}
}

// NewLoaderWithFS creates a loader with a custom filesystem, used by tests.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// LoadPatterns parses patterns from YAML bytes and compiles them.
func (l *Loader) LoadPatterns(data []byte) ([]*Pattern, error) {
	var file yamlPatternsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("no patterns found in YAML")
	}

	patterns := make([]*Pattern, 0, len(file.Patterns))
	for _, yp := range file.Patterns {
		p, err := compilePattern(yp)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// LoadPatternFile loads patterns from a YAML file path.
func (l *Loader) LoadPatternFile(path string) ([]*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadPatterns(data)
}

// LoadBuiltinPatterns loads every pattern shipped in the embedded filesystem,
// in file order.
func (l *Loader) LoadBuiltinPatterns() ([]*Pattern, error) {
	var patterns []*Pattern

	err := fs.WalkDir(l.fs, "patterns", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		loaded, err := l.LoadPatterns(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		patterns = append(patterns, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patterns, nil
}

func compilePattern(yp yamlPattern) (*Pattern, error) {
	if yp.Category == "" {
		return nil, fmt.Errorf("pattern missing category")
	}
	re, err := regexp2.Compile(yp.Regex, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", yp.Category, err)
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{
		Category: yp.Category,
		Regex:    yp.Regex,
		Keywords: yp.Keywords,
		re:       re,
	}, nil
}
