package output

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// TextGenerator renders a plain-text digest in the style of a concatenated
// source dump: a header, the directory tree, then each file under a
// separator banner.
type TextGenerator struct{}

func (g *TextGenerator) Name() string      { return "text" }
func (g *TextGenerator) Extension() string { return ".txt" }

func (g *TextGenerator) Generate(ctx context.Context, w io.Writer, rc *Context) error {
	separator := "# " + strings.Repeat("-", 78)

	if _, err := fmt.Fprintf(w, "# Project digest\n# Root: %s\n# Run: %s\n# Generated: %s\n# Files: %d\n\n",
		rc.Meta.Root, rc.Meta.RunID, rc.Meta.StartedAt.UTC().Format("2006-01-02T15:04:05Z"), len(rc.Records)); err != nil {
		return err
	}
	if rc.Tree != "" {
		if _, err := fmt.Fprintf(w, "# Directory tree\n\n%s\n", rc.Tree); err != nil {
			return err
		}
	}

	for _, record := range rc.Records {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		content := rc.rendered(record)
		if _, err := fmt.Fprintf(w, "%s\n# Source: %s\n%s\n\n%s", separator, record.RelativePath, separator, content); err != nil {
			return err
		}
		if !strings.HasSuffix(content, "\n") {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
