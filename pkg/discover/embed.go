package discover

import "embed"

// builtinGroupsFS carries the builtin extension group definitions.
//
//go:embed groups/*.yml
var builtinGroupsFS embed.FS
