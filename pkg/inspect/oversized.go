package inspect

import (
	"regexp"
	"strings"

	"github.com/promptpack/promptpack/pkg/types"
)

// base64RunRe matches base64-like runs of at least 100 characters. Compiled
// once; regexp match state is per-call so sharing the pattern is safe.
var base64RunRe = regexp.MustCompile(`[A-Za-z0-9+/]{100,}={0,2}`)

// checkBase64Blocks flags the largest base64-like run whose decoded-size
// estimate exceeds maxKB. A zero limit disables the check.
func checkBase64Blocks(content []byte, maxKB int) types.Issue {
	if maxKB <= 0 {
		return nil
	}
	worst := 0
	for _, run := range base64RunRe.FindAll(content, -1) {
		// Decoded size estimate: 3 bytes per 4 base64 characters.
		estKB := len(run) * 3 / 4 / 1024
		if estKB > worst {
			worst = estKB
		}
	}
	if worst > maxKB {
		return types.OversizedBase64Block{SizeKB: worst, MaxKB: maxKB}
	}
	return nil
}

// checkLineLength flags the longest line exceeding maxLen. A zero limit
// disables the check.
func checkLineLength(content []byte, maxLen int) types.Issue {
	if maxLen <= 0 {
		return nil
	}
	longest := 0
	start := 0
	for i := 0; i <= len(content); i++ {
		if i == len(content) || content[i] == '\n' {
			if n := i - start; n > longest {
				longest = n
			}
			start = i + 1
		}
	}
	if longest > maxLen {
		return types.OversizedLine{Length: longest, Max: maxLen}
	}
	return nil
}

// checkTokenLength flags the longest whitespace-delimited token exceeding
// maxLen, excluding tokens that are themselves high-confidence base64 so the
// base64 check does not get double-counted. A zero limit disables the check.
func checkTokenLength(content []byte, maxLen int) types.Issue {
	if maxLen <= 0 {
		return nil
	}
	longest := 0
	for _, token := range strings.Fields(string(content)) {
		if len(token) <= maxLen || len(token) <= longest {
			continue
		}
		if isHighConfidenceBase64(token) {
			continue
		}
		longest = len(token)
	}
	if longest > maxLen {
		return types.OversizedToken{Length: longest, Max: maxLen}
	}
	return nil
}

// isHighConfidenceBase64 reports whether a token is almost certainly a
// base64 blob: at least 95% base64-alphabet characters, no underscores, and
// a proper base64-style ending.
func isHighConfidenceBase64(token string) bool {
	if len(token) == 0 || strings.ContainsRune(token, '_') {
		return false
	}
	alphabet := 0
	for _, c := range token {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '+' || c == '/' || c == '=' {
			alphabet++
		}
	}
	if float64(alphabet)/float64(len(token)) < 0.95 {
		return false
	}
	last := token[len(token)-1]
	return last == '=' ||
		(last >= 'A' && last <= 'Z') || (last >= 'a' && last <= 'z') ||
		(last >= '0' && last <= '9')
}
