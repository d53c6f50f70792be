package output

import (
	"context"
	"fmt"
	"html"
	"io"
)

// HTMLGenerator renders an HTML digest. Every file path and every byte of
// file content is HTML-escaped before embedding; the input is untrusted and
// would otherwise be an HTML injection vector.
type HTMLGenerator struct{}

func (g *HTMLGenerator) Name() string      { return "html" }
func (g *HTMLGenerator) Extension() string { return ".html" }

func (g *HTMLGenerator) Generate(ctx context.Context, w io.Writer, rc *Context) error {
	if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Project Digest - %s</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; }
code { font-family: monospace; }
</style>
</head>
<body>
<h1>Project Digest</h1>
<p>Root: <code>%s</code><br>Run: <code>%s</code><br>Generated: %s<br>Files: %d</p>
`,
		html.EscapeString(rc.Meta.Root),
		html.EscapeString(rc.Meta.Root),
		html.EscapeString(rc.Meta.RunID),
		rc.Meta.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		len(rc.Records)); err != nil {
		return err
	}

	if rc.Tree != "" {
		if _, err := fmt.Fprintf(w, "<h2>Directory Tree</h2>\n<pre>%s</pre>\n", html.EscapeString(rc.Tree)); err != nil {
			return err
		}
	}

	anchors := BuildAnchors(rc.Records)
	if _, err := io.WriteString(w, "<h2>Table of Contents</h2>\n<ul>\n"); err != nil {
		return err
	}
	for _, record := range rc.Records {
		if _, err := fmt.Fprintf(w, "<li><a href=\"#%s\">%s</a></li>\n",
			anchors[record.RelativePath], html.EscapeString(record.RelativePath)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</ul>\n"); err != nil {
		return err
	}

	for _, record := range rc.Records {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		content := rc.rendered(record)
		if _, err := fmt.Fprintf(w, "<h2 id=\"%s\">%s</h2>\n<pre><code class=\"language-%s\">%s</code></pre>\n",
			anchors[record.RelativePath],
			html.EscapeString(record.RelativePath),
			LanguageTag(record.RelativePath),
			html.EscapeString(content)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
