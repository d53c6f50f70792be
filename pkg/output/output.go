// Package output renders the validated file set into consolidated
// artifacts. Generators stream one record at a time so memory use is
// bounded by a single file's content, and share anchor and language-tag
// derivation so every format links the same way.
package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/promptpack/promptpack/pkg/types"
)

// RenderFilter lets a hook transform a file's rendered content before it is
// written. It receives the record and the content about to be emitted and
// returns the content to use instead.
type RenderFilter func(record *types.FileRecord, rendered string) string

// Context carries everything a generator needs for one run. Generators only
// read it.
type Context struct {
	Meta    types.RunMetadata
	Records []*types.FileRecord
	Tree    string
	Filter  RenderFilter
}

// Generator renders the file set into one format.
type Generator interface {
	// Name identifies the format ("text", "markdown", "html").
	Name() string
	// Extension is the artifact filename extension, including the dot.
	Extension() string
	// Generate streams the artifact. Cancellation is checked between
	// records, never mid-record.
	Generate(ctx context.Context, w io.Writer, rc *Context) error
}

// ByName returns the builtin generator for a format name.
func ByName(name string) (Generator, error) {
	switch name {
	case "text", "txt":
		return &TextGenerator{}, nil
	case "markdown", "md":
		return &MarkdownGenerator{}, nil
	case "html":
		return &HTMLGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
}

// rendered applies the hook filter, if any, to a record's content.
func (rc *Context) rendered(record *types.FileRecord) string {
	if rc.Filter == nil {
		return record.Content
	}
	return rc.Filter(record, record.Content)
}

// BuildTree renders an indented directory tree of the accepted records'
// relative paths, in sorted order.
func BuildTree(records []*types.FileRecord) string {
	dirs := make(map[string]bool)
	var lines []string
	seen := make(map[string]bool)

	var paths []string
	for _, r := range records {
		paths = append(paths, r.RelativePath)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		parts := strings.Split(p, "/")
		for depth, part := range parts {
			prefix := strings.Join(parts[:depth+1], "/")
			isDir := depth < len(parts)-1
			if isDir {
				if dirs[prefix] {
					continue
				}
				dirs[prefix] = true
			}
			if seen[prefix] {
				continue
			}
			seen[prefix] = true
			line := strings.Repeat("  ", depth) + part
			if isDir {
				line += "/"
			}
			lines = append(lines, line)
		}
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
