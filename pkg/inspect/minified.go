package inspect

import (
	"path"
	"strings"
)

const (
	minifiedMeanThreshold     = 250
	minifiedMeanHardThreshold = 300
	minifiedLongLineLength    = 1000
	minifiedLongLineFraction  = 0.20
	minifiedSingleLineLength  = 5000
)

// isMinified applies the minified-content heuristic. A filename carrying a
// "min" marker is flagged without looking at the content at all.
func isMinified(relPath string, content []byte) bool {
	if hasMinMarker(path.Base(relPath)) {
		return true
	}

	lines := strings.Split(string(content), "\n")
	totalLen := 0
	nonBlank := 0
	longLines := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonBlank++
		totalLen += len(line)
		if len(line) > minifiedSingleLineLength {
			return true
		}
		if len(line) > minifiedLongLineLength {
			longLines++
		}
	}
	if nonBlank == 0 {
		return false
	}

	mean := float64(totalLen) / float64(nonBlank)
	if mean > minifiedMeanHardThreshold {
		return true
	}
	if mean > minifiedMeanThreshold && float64(longLines)/float64(nonBlank) > minifiedLongLineFraction {
		return true
	}
	return false
}

// hasMinMarker matches names like app.min.js, vendor-min.css, bundle.min.
func hasMinMarker(base string) bool {
	lower := strings.ToLower(base)
	return strings.Contains(lower, ".min.") ||
		strings.HasSuffix(lower, ".min") ||
		strings.Contains(lower, "-min.")
}
