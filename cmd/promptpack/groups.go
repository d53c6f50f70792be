package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/promptpack/promptpack/pkg/discover"
)

var groupsFormat string

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List builtin extension groups",
	Long:  "Display the builtin extension groups and the file extensions each one selects",
	RunE:  runGroups,
}

func init() {
	groupsCmd.Flags().StringVar(&groupsFormat, "format", "table", "Output format: table, json")
}

func runGroups(cmd *cobra.Command, args []string) error {
	groups, err := discover.NewGroupLoader().LoadBuiltinGroups()
	if err != nil {
		return fmt.Errorf("loading builtin groups: %w", err)
	}

	switch groupsFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(groups)
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintf(w, "Group\tExtensions\n")
		fmt.Fprintf(w, "-----\t----------\n")
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%s\n", g.Name, strings.Join(g.Extensions, " "))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", groupsFormat)
	}
}
