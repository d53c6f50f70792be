package output

import (
	"path"
	"strings"
)

// extLanguages maps file extensions to fence/highlight language tags.
var extLanguages = map[string]string{
	".go":       "go",
	".py":       "python",
	".rs":       "rust",
	".java":     "java",
	".rb":       "ruby",
	".php":      "php",
	".cs":       "csharp",
	".kt":       "kotlin",
	".c":        "c",
	".h":        "c",
	".cpp":      "cpp",
	".hpp":      "cpp",
	".js":       "javascript",
	".jsx":      "jsx",
	".ts":       "typescript",
	".tsx":      "tsx",
	".vue":      "vue",
	".svelte":   "svelte",
	".html":     "html",
	".css":      "css",
	".scss":     "scss",
	".sh":       "bash",
	".bash":     "bash",
	".zsh":      "bash",
	".ps1":      "powershell",
	".bat":      "batch",
	".json":     "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",
	".ini":      "ini",
	".cfg":      "ini",
	".md":       "markdown",
	".rst":      "rst",
	".adoc":     "asciidoc",
	".sql":      "sql",
	".proto":    "protobuf",
	".graphql":  "graphql",
	".xml":      "xml",
	".tf":       "hcl",
	".hcl":      "hcl",
}

// basenameLanguages maps well-known extension-less basenames.
var basenameLanguages = map[string]string{
	"dockerfile": "dockerfile",
	"makefile":   "makefile",
	"gemfile":    "ruby",
	"rakefile":   "ruby",
}

// LanguageTag returns the language tag for a relative path, defaulting to
// "text" when the extension and basename are both unknown.
func LanguageTag(relPath string) string {
	base := strings.ToLower(path.Base(relPath))
	if lang, ok := basenameLanguages[base]; ok {
		return lang
	}
	if lang, ok := extLanguages[strings.ToLower(path.Ext(relPath))]; ok {
		return lang
	}
	return "text"
}
