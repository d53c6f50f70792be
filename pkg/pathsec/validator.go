// Package pathsec enforces the run's directory boundary. Every candidate
// path is validated against the root immediately before it is read, not just
// at discovery time, so renames and unusual filesystem entries between the
// two phases cannot smuggle reads outside the root.
package pathsec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TraversalError reports a path that resolves outside the configured root.
// Both paths are kept as context so the failure is never folded into a
// generic error.
type TraversalError struct {
	Path string
	Root string
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("path %q resolves outside root %q", e.Path, e.Root)
}

// SymlinkError reports a symlink encountered while symlinks are disallowed.
type SymlinkError struct {
	Path string
}

func (e *SymlinkError) Error() string {
	return fmt.Sprintf("symlink not allowed: %q", e.Path)
}

// Validate canonicalizes path and root and confirms that path lies inside
// root. It returns the canonical absolute path on success and a
// *TraversalError otherwise.
func Validate(path, root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", &TraversalError{Path: path, Root: root}
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", &TraversalError{Path: path, Root: root}
	}
	return absPath, nil
}
