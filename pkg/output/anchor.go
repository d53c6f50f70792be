package output

import (
	"strconv"
	"strings"

	"github.com/promptpack/promptpack/pkg/types"
)

// Slug derives a stable anchor id from a relative path: lower-cased with
// every non-alphanumeric run collapsed to a single hyphen.
func Slug(relPath string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(relPath) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// BuildAnchors assigns an anchor to every record in order. Two distinct
// paths that slug identically get numeric suffixes (-2, -3, ...) so table
// of contents links are never silently overwritten.
func BuildAnchors(records []*types.FileRecord) map[string]string {
	anchors := make(map[string]string, len(records))
	used := make(map[string]int, len(records))
	for _, r := range records {
		slug := Slug(r.RelativePath)
		used[slug]++
		if n := used[slug]; n > 1 {
			slug = slug + "-" + strconv.Itoa(n)
			used[slug]++
		}
		anchors[r.RelativePath] = slug
	}
	return anchors
}
