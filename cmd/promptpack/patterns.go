package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/promptpack/promptpack/pkg/redact"
)

var (
	patternsFormat  string
	patternsInclude string
	patternsExclude string
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List builtin secret patterns",
	Long:  "Display the builtin secret categories that redaction checks for",
	RunE:  runPatterns,
}

func init() {
	patternsCmd.Flags().StringVar(&patternsFormat, "format", "table", "Output format: table, json")
	patternsCmd.Flags().StringVar(&patternsInclude, "include", "", "Only show categories matching regex (comma-separated)")
	patternsCmd.Flags().StringVar(&patternsExclude, "exclude", "", "Hide categories matching regex (comma-separated)")
}

func runPatterns(cmd *cobra.Command, args []string) error {
	patterns, err := redact.NewLoader().LoadBuiltinPatterns()
	if err != nil {
		return fmt.Errorf("loading builtin patterns: %w", err)
	}

	patterns, err = redact.Filter(patterns, redact.FilterConfig{
		Include: redact.ParsePatterns(patternsInclude),
		Exclude: redact.ParsePatterns(patternsExclude),
	})
	if err != nil {
		return fmt.Errorf("filtering patterns: %w", err)
	}

	switch patternsFormat {
	case "json":
		type entry struct {
			Category string   `json:"category"`
			Keywords []string `json:"keywords,omitempty"`
		}
		entries := make([]entry, 0, len(patterns))
		for _, p := range patterns {
			entries = append(entries, entry{Category: p.Category, Keywords: p.Keywords})
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintf(w, "Category\tKeywords\n")
		fmt.Fprintf(w, "--------\t--------\n")
		for _, p := range patterns {
			fmt.Fprintf(w, "%s\t%s\n", p.Category, strings.Join(p.Keywords, " "))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", patternsFormat)
	}
}
