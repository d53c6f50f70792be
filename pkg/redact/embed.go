package redact

import "embed"

// builtinPatternsFS carries the builtin secret pattern definitions.
//
//go:embed patterns/*.yml
var builtinPatternsFS embed.FS
