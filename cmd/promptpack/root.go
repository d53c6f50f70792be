package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	quiet     bool
	colorMode string
)

var rootCmd = &cobra.Command{
	Use:   "promptpack",
	Short: "Promptpack - aggregate source files into a single digest",
	Long: `Promptpack walks a project directory and combines its source files into one
reviewable digest. Files are selected by extension group, filtered through
gitignore-style rules, checked against size and content limits, and scrubbed
of embedded secrets before anything is written.

Each run also produces a JSON-lines log describing every decision it made.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize output: auto, always, never")

	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. A .env file in the working directory, if
// present, supplies environment defaults for flags that were not set.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.Execute()
}
