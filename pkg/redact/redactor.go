// Package redact finds and replaces secret material in text before it can
// reach any output artifact. Detection uses an Aho-Corasick keyword
// prefilter so only patterns whose keywords appear in the content are
// executed against it.
package redact

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Placeholder replaces every detected secret occurrence.
const Placeholder = "[REDACTED]"

// Redactor runs an ordered pattern list against text. Redaction never
// rejects content; it only rewrites it and reports which categories fired.
// Every invocation uses fresh match state — no cursor or runner is shared
// between files.
type Redactor struct {
	patterns []*Pattern

	prefilter         *ahocorasick.Matcher
	keywords          []string
	keywordPatterns   map[string][]*Pattern
	noKeywordPatterns []*Pattern
}

// New creates a Redactor from an ordered pattern list.
func New(patterns []*Pattern) *Redactor {
	r := &Redactor{
		patterns:        patterns,
		keywordPatterns: make(map[string][]*Pattern),
	}

	seen := make(map[string]bool)
	for _, p := range patterns {
		if len(p.Keywords) == 0 {
			r.noKeywordPatterns = append(r.noKeywordPatterns, p)
			continue
		}
		for _, kw := range p.Keywords {
			kw = strings.ToLower(kw)
			if !seen[kw] {
				seen[kw] = true
				r.keywords = append(r.keywords, kw)
			}
			r.keywordPatterns[kw] = append(r.keywordPatterns[kw], p)
		}
	}
	if len(r.keywords) > 0 {
		r.prefilter = ahocorasick.NewStringMatcher(r.keywords)
	}
	return r
}

// NewBuiltin creates a Redactor with the embedded builtin patterns.
func NewBuiltin() (*Redactor, error) {
	patterns, err := NewLoader().LoadBuiltinPatterns()
	if err != nil {
		return nil, err
	}
	return New(patterns), nil
}

// Categories returns the ordered category names of the configured patterns.
func (r *Redactor) Categories() []string {
	out := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		out = append(out, p.Category)
	}
	return out
}

// Redact replaces every occurrence of every matching pattern with
// Placeholder and returns the rewritten text plus the ordered list of
// categories that fired. Redacting already-redacted text is a no-op.
func (r *Redactor) Redact(text string) (string, []string) {
	candidates := r.candidatePatterns(text)
	if len(candidates) == 0 {
		return text, nil
	}

	var categories []string
	for _, p := range r.patterns {
		if !candidates[p] {
			continue
		}
		replaced, err := p.re.Replace(text, Placeholder, -1, -1)
		if err != nil {
			// Backtracking timeout: leave the text as-is for this pattern
			// rather than failing the file.
			continue
		}
		if replaced != text {
			categories = append(categories, p.Category)
			text = replaced
		}
	}
	return text, categories
}

// candidatePatterns returns the set of patterns worth executing: those whose
// keywords appear in the lowercased content, plus keyword-less patterns.
func (r *Redactor) candidatePatterns(text string) map[*Pattern]bool {
	candidates := make(map[*Pattern]bool, len(r.noKeywordPatterns))
	for _, p := range r.noKeywordPatterns {
		candidates[p] = true
	}
	if r.prefilter == nil {
		return candidates
	}

	hits := r.prefilter.Match([]byte(strings.ToLower(text)))
	for _, hit := range hits {
		for _, p := range r.keywordPatterns[r.keywords[hit]] {
			candidates[p] = true
		}
	}
	return candidates
}
