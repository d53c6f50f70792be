package types

// Limits holds every configurable ceiling and flag for one run. A zero value
// for an individual ceiling disables that check.
type Limits struct {
	MaxFileSizeKB          int
	MaxFiles               int
	MaxTotalSizeMB         int
	MaxBase64BlockKB       int
	MaxLineLength          int
	MaxTokenLength         int
	MaxSymlinkAuditEntries int
	AllowSymlinks          bool
	ExcludeSecrets         bool
}

// DefaultLimits returns the ceilings used when the caller does not override
// them.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSizeKB:          1024,
		MaxFiles:               5000,
		MaxTotalSizeMB:         100,
		MaxBase64BlockKB:       64,
		MaxLineLength:          5000,
		MaxTokenLength:         2000,
		MaxSymlinkAuditEntries: 100,
		AllowSymlinks:          false,
		ExcludeSecrets:         true,
	}
}
