package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestDiscover_SortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"zz.py":          "print(1)",
		"aa.py":          "print(2)",
		"sub/mid.py":     "print(3)",
		"sub/ignored.go": "package sub",
		"image.png":      "not matched",
	})

	candidates, err := Discover(context.Background(), root, []string{".py"}, true, NewIgnoreRuleSet(), nil)
	require.NoError(t, err)

	var rels []string
	for _, c := range candidates {
		rels = append(rels, c.RelativePath)
	}
	assert.Equal(t, []string{"aa.py", "sub/mid.py", "zz.py"}, rels)
}

func TestDiscover_NonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"top.py":     "1",
		"sub/low.py": "2",
	})

	candidates, err := Discover(context.Background(), root, []string{".py"}, false, NewIgnoreRuleSet(), nil)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "top.py", candidates[0].RelativePath)
}

func TestDiscover_IgnoreLayers(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"keep.py":         "1",
		"vendor/gone.py":  "2",
		"secrets.py":      "3",
		"digest.md":       "artifact from a previous run",
		"notes/digest.md": "nested artifact",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("vendor/\n"), 0644))

	rules := NewIgnoreRuleSet()
	require.NoError(t, rules.AddVCSIgnoreFile(filepath.Join(root, ".gitignore")))
	rules.AddPatterns("user", []string{"secrets.py"})
	rules.AddSelfExclusions("digest.md")

	candidates, err := Discover(context.Background(), root, []string{".py", ".md"}, true, rules, nil)
	require.NoError(t, err)

	var rels []string
	for _, c := range candidates {
		rels = append(rels, c.RelativePath)
	}
	assert.Equal(t, []string{"keep.py"}, rels)
	assert.Equal(t, []string{"vcs-ignore", "user", "self-exclusion"}, rules.Layers())
}

func TestDiscover_MissingGitignoreIsFine(t *testing.T) {
	rules := NewIgnoreRuleSet()
	require.NoError(t, rules.AddVCSIgnoreFile(filepath.Join(t.TempDir(), "nope")))
	assert.Empty(t, rules.Layers())
}

func TestDiscover_Cancellation(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, root, []string{".py"}, true, NewIgnoreRuleSet(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildGlob(t *testing.T) {
	assert.Equal(t, "**/*{.go,.py}", BuildGlob([]string{".go", ".py"}, true))
	assert.Equal(t, "*{.md}", BuildGlob([]string{".md"}, false))
}

func TestResolveExtensions(t *testing.T) {
	groups := []*ExtensionGroup{
		{Name: "backend", Extensions: []string{".go", ".py"}},
		{Name: "docs", Extensions: []string{".md", ".py"}},
	}

	exts, warnings := ResolveExtensions(groups, []string{"backend", "nosuch"})
	assert.Equal(t, []string{".go", ".py"}, exts)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "nosuch")

	all, warnings := ResolveExtensions(groups, []string{GroupAll})
	assert.Equal(t, []string{".go", ".md", ".py"}, all)
	assert.Empty(t, warnings)
}

func TestMergeGroups(t *testing.T) {
	base := []*ExtensionGroup{{Name: "backend", Extensions: []string{".go"}}}
	contributed := []*ExtensionGroup{
		{Name: "backend", Extensions: []string{".go", ".zig"}},
		{Name: "notebooks", Extensions: []string{".ipynb"}},
	}

	merged := MergeGroups(base, contributed)
	require.Len(t, merged, 2)
	assert.Equal(t, []string{".go", ".zig"}, merged[0].Extensions)
	assert.Equal(t, "notebooks", merged[1].Name)

	// Merging must not mutate the base groups.
	assert.Equal(t, []string{".go"}, base[0].Extensions)
}

func TestGroupLoader_Builtin(t *testing.T) {
	groups, err := NewGroupLoader().LoadBuiltinGroups()
	require.NoError(t, err)
	require.NotEmpty(t, groups)

	names := make(map[string]bool)
	for _, g := range groups {
		assert.False(t, names[g.Name], "group names must be unique")
		names[g.Name] = true
		assert.NotEmpty(t, g.Extensions)
	}
	assert.True(t, names["backend"])
}

func TestGroupLoader_CustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"groups/extra.yml": &fstest.MapFile{Data: []byte(
			"groups:\n  - name: infra\n    extensions: [\".tf\", \".hcl\"]\n"),
		},
	}
	groups, err := NewGroupLoaderWithFS(fsys).LoadBuiltinGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "infra", groups[0].Name)
}
