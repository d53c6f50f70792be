package redact

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterConfig selects a subset of patterns by category. Include and Exclude
// hold regular expressions; exclusion wins over inclusion.
type FilterConfig struct {
	Include []string
	Exclude []string
}

// ParsePatterns splits a comma-separated flag value into trimmed non-empty
// pattern strings.
func ParsePatterns(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Filter returns the patterns whose category passes the config, preserving
// order.
func Filter(patterns []*Pattern, cfg FilterConfig) ([]*Pattern, error) {
	include, err := compileAll(cfg.Include)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exclude, err := compileAll(cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	var out []*Pattern
	for _, p := range patterns {
		if len(include) > 0 && !anyMatch(include, p.Category) {
			continue
		}
		if anyMatch(exclude, p.Category) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func compileAll(exprs []string) ([]*regexp.Regexp, error) {
	var res []*regexp.Regexp
	for _, expr := range exprs {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
