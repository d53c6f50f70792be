package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// GroupAll requests every configured extension group.
const GroupAll = "all"

// ExtensionGroup is a named, ordered set of case-sensitive file extensions.
type ExtensionGroup struct {
	Name       string   `yaml:"name" json:"name"`
	Extensions []string `yaml:"extensions" json:"extensions"`
}

type yamlGroupsFile struct {
	Groups []*ExtensionGroup `yaml:"groups"`
}

// GroupLoader loads extension groups from YAML files.
type GroupLoader struct {
	fs fs.FS
}

// NewGroupLoader creates a loader backed by the builtin embedded groups.
func NewGroupLoader() *GroupLoader {
	return &GroupLoader{fs: builtinGroupsFS}
}

// NewGroupLoaderWithFS creates a loader with a custom filesystem, used by
// tests.
func NewGroupLoaderWithFS(fsys fs.FS) *GroupLoader {
	return &GroupLoader{fs: fsys}
}

// LoadGroups parses groups from YAML bytes.
func (l *GroupLoader) LoadGroups(data []byte) ([]*ExtensionGroup, error) {
	var file yamlGroupsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Groups) == 0 {
		return nil, fmt.Errorf("no groups found in YAML")
	}
	return file.Groups, nil
}

// LoadBuiltinGroups loads every group shipped in the embedded filesystem.
func (l *GroupLoader) LoadBuiltinGroups() ([]*ExtensionGroup, error) {
	var groups []*ExtensionGroup

	err := fs.WalkDir(l.fs, "groups", func(path string, d fs.DirEntry, err error) error {
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
		loaded, err := l.LoadGroups(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		groups = append(groups, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// MergeGroups folds contributed groups into base. A contributed group whose
// name already exists extends that group's extension list instead of
// shadowing it, keeping group names unique within a run.
func MergeGroups(base, contributed []*ExtensionGroup) []*ExtensionGroup {
	merged := make([]*ExtensionGroup, 0, len(base)+len(contributed))
	byName := make(map[string]*ExtensionGroup)
	for _, g := range base {
		cp := &ExtensionGroup{Name: g.Name, Extensions: append([]string(nil), g.Extensions...)}
		merged = append(merged, cp)
		byName[cp.Name] = cp
	}
	for _, g := range contributed {
		existing, ok := byName[g.Name]
		if !ok {
			cp := &ExtensionGroup{Name: g.Name, Extensions: append([]string(nil), g.Extensions...)}
			merged = append(merged, cp)
			byName[cp.Name] = cp
			continue
		}
		for _, ext := range g.Extensions {
			if !containsString(existing.Extensions, ext) {
				existing.Extensions = append(existing.Extensions, ext)
			}
		}
	}
	return merged
}

// ResolveExtensions expands requested group names into a deduplicated,
// sorted extension list. An unknown group name produces a warning, not an
// error. Requesting "all" selects every group.
func ResolveExtensions(groups []*ExtensionGroup, requested []string) (extensions, warnings []string) {
	byName := make(map[string]*ExtensionGroup, len(groups))
	for _, g := range groups {
		byName[g.Name] = g
	}

	selected := make([]*ExtensionGroup, 0, len(groups))
	if len(requested) == 0 || containsString(requested, GroupAll) {
		selected = groups
	} else {
		for _, name := range requested {
			g, ok := byName[name]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unknown extension group %q", name))
				continue
			}
			selected = append(selected, g)
		}
	}

	seen := make(map[string]bool)
	for _, g := range selected {
		for _, ext := range g.Extensions {
			if ext != "" && !seen[ext] {
				seen[ext] = true
				extensions = append(extensions, ext)
			}
		}
	}
	sort.Strings(extensions)
	return extensions, warnings
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
