package discover

import (
	"os"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreRuleSet layers ignore pattern sources: VCS-ignore file contents,
// explicit user patterns, and self-exclusion of the run's own output names.
// A path is ignored if any layer matches it; later layers never un-ignore
// earlier exclusions.
type IgnoreRuleSet struct {
	layers []ignoreLayer
}

type ignoreLayer struct {
	name    string
	matcher *gitignore.GitIgnore
}

// NewIgnoreRuleSet creates an empty rule set.
func NewIgnoreRuleSet() *IgnoreRuleSet {
	return &IgnoreRuleSet{}
}

// AddVCSIgnoreFile compiles a .gitignore-style file into a layer. A missing
// file is not an error; the layer is simply absent.
func (s *IgnoreRuleSet) AddVCSIgnoreFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return err
	}
	s.layers = append(s.layers, ignoreLayer{name: "vcs-ignore", matcher: matcher})
	return nil
}

// AddPatterns compiles explicit pattern lines into a named layer. Empty
// input adds nothing.
func (s *IgnoreRuleSet) AddPatterns(name string, lines []string) {
	if len(lines) == 0 {
		return
	}
	s.layers = append(s.layers, ignoreLayer{
		name:    name,
		matcher: gitignore.CompileIgnoreLines(lines...),
	})
}

// AddSelfExclusions excludes the run's own output file names so a previous
// run's artifacts are never swallowed into the next one.
func (s *IgnoreRuleSet) AddSelfExclusions(names ...string) {
	s.AddPatterns("self-exclusion", names)
}

// Match reports whether relPath is ignored and by which layer.
func (s *IgnoreRuleSet) Match(relPath string) (layer string, ignored bool) {
	for _, l := range s.layers {
		if l.matcher.MatchesPath(relPath) {
			return l.name, true
		}
	}
	return "", false
}

// Layers returns the names of the configured layers, for the run log.
func (s *IgnoreRuleSet) Layers() []string {
	names := make([]string, 0, len(s.layers))
	for _, l := range s.layers {
		names = append(names, l.name)
	}
	return names
}
