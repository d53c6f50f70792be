package output

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// MarkdownGenerator renders a markdown digest with an anchored table of
// contents and one fenced code block per file, language-tagged from the
// extension map.
type MarkdownGenerator struct{}

func (g *MarkdownGenerator) Name() string      { return "markdown" }
func (g *MarkdownGenerator) Extension() string { return ".md" }

func (g *MarkdownGenerator) Generate(ctx context.Context, w io.Writer, rc *Context) error {
	anchors := BuildAnchors(rc.Records)

	if _, err := fmt.Fprintf(w, "# Project Digest\n\nRoot: `%s`  \nRun: `%s`  \nGenerated: %s  \nFiles: %d\n\n",
		rc.Meta.Root, rc.Meta.RunID, rc.Meta.StartedAt.UTC().Format("2006-01-02T15:04:05Z"), len(rc.Records)); err != nil {
		return err
	}

	if rc.Tree != "" {
		if _, err := fmt.Fprintf(w, "## Directory Tree\n\n```text\n%s```\n\n", rc.Tree); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "## Table of Contents\n\n"); err != nil {
		return err
	}
	for _, record := range rc.Records {
		if _, err := fmt.Fprintf(w, "- [%s](#%s)\n", record.RelativePath, anchors[record.RelativePath]); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	for _, record := range rc.Records {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		content := rc.rendered(record)
		fence := fenceFor(content)
		if _, err := fmt.Fprintf(w, "<a id=\"%s\"></a>\n\n## %s\n\n%s%s\n%s",
			anchors[record.RelativePath], record.RelativePath, fence, LanguageTag(record.RelativePath), content); err != nil {
			return err
		}
		if !strings.HasSuffix(content, "\n") {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", fence); err != nil {
			return err
		}
	}
	return nil
}

// fenceFor returns a fence longer than any backtick run in the content, so
// embedded markdown cannot break out of its code block.
func fenceFor(content string) string {
	longest := 0
	run := 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	n := longest + 1
	if n < 3 {
		n = 3
	}
	return strings.Repeat("`", n)
}
