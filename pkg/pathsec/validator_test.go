package pathsec

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_InsideRoot(t *testing.T) {
	root := t.TempDir()

	nested := filepath.Join(root, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0755))
	target := filepath.Join(nested, "file.go")
	require.NoError(t, os.WriteFile(target, []byte("package main"), 0644))

	abs, err := Validate(target, root)
	require.NoError(t, err)
	assert.Equal(t, target, abs)
}

func TestValidate_RootItself(t *testing.T) {
	root := t.TempDir()

	abs, err := Validate(root, root)
	require.NoError(t, err)
	assert.Equal(t, root, abs)
}

func TestValidate_OutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	cases := []string{
		filepath.Join(outside, "file.txt"),
		filepath.Join(root, "..", "escape.txt"),
		filepath.Join(root, "sub", "..", "..", "escape.txt"),
	}
	for _, path := range cases {
		_, err := Validate(path, root)

		var traversal *TraversalError
		require.ErrorAs(t, err, &traversal, "path %s should be rejected", path)
		assert.Equal(t, path, traversal.Path)
		assert.Equal(t, root, traversal.Root)
	}
}

func TestValidate_SiblingPrefix(t *testing.T) {
	// /tmp/root-evil must not validate against /tmp/root even though it
	// shares a string prefix.
	base := t.TempDir()
	root := filepath.Join(base, "root")
	require.NoError(t, os.Mkdir(root, 0755))
	sibling := filepath.Join(base, "root-evil", "file.txt")

	_, err := Validate(sibling, root)

	var traversal *TraversalError
	assert.ErrorAs(t, err, &traversal)
}

func TestAuditor_DeniedSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	root := t.TempDir()
	target := filepath.Join(root, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0644))
	link := filepath.Join(root, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	auditor := NewAuditor(10, nil)
	err := auditor.Audit(link, false)

	var symlinkErr *SymlinkError
	require.ErrorAs(t, err, &symlinkErr)
	assert.Equal(t, link, symlinkErr.Path)
	assert.Empty(t, auditor.Entries())
}

func TestAuditor_RecordsAllowedSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	root := t.TempDir()
	target := filepath.Join(root, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0644))
	link := filepath.Join(root, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	auditor := NewAuditor(10, nil)
	require.NoError(t, auditor.Audit(link, true))

	entries := auditor.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, link, entries[0].SymlinkPath)
	assert.Equal(t, target, entries[0].TargetPath)
	assert.Equal(t, "file", entries[0].TargetKind)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAuditor_BrokenSymlinkStillAudited(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	root := t.TempDir()
	link := filepath.Join(root, "dangling.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.txt"), link))

	auditor := NewAuditor(10, nil)
	require.NoError(t, auditor.Audit(link, true))

	entries := auditor.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "missing", entries[0].TargetKind)
}

func TestAuditor_CapEnforced(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	root := t.TempDir()
	target := filepath.Join(root, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0644))

	auditor := NewAuditor(3, nil)
	for i := 0; i < 10; i++ {
		link := filepath.Join(root, "link"+string(rune('a'+i))+".txt")
		require.NoError(t, os.Symlink(target, link))
		require.NoError(t, auditor.Audit(link, true))
	}

	assert.Len(t, auditor.Entries(), 3)
	assert.True(t, auditor.CapReached())
}

func TestAuditor_RegularFilePassesThrough(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("data"), 0644))

	auditor := NewAuditor(10, nil)
	assert.NoError(t, auditor.Audit(file, false))
	assert.Empty(t, auditor.Entries())
}

func TestAuditor_MissingPath(t *testing.T) {
	auditor := NewAuditor(10, nil)
	err := auditor.Audit(filepath.Join(t.TempDir(), "nope"), true)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
