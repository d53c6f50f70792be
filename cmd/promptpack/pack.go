package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/promptpack/promptpack"
	"github.com/promptpack/promptpack/pkg/redact"
)

var (
	packGroups         []string
	packFormats        []string
	packOutputDir      string
	packBaseName       string
	packIgnore         []string
	packNoGitignore    bool
	packNoRecursive    bool
	packMaxFileSize    int
	packMaxFiles       int
	packMaxTotalSize   int
	packMaxBase64      int
	packMaxLineLen     int
	packMaxTokenLen    int
	packAuditEntries   int
	packAllowSymlinks  bool
	packKeepSecrets    bool
	packSecretsInclude string
	packSecretsExclude string
)

var packCmd = &cobra.Command{
	Use:   "pack <root>",
	Short: "Aggregate a directory into digest artifacts",
	Long: `Walk the given root directory, select files by extension group, and write
the combined digest plus a run log to the output directory.

Flags left unset fall back to PROMPTPACK_* environment variables
(PROMPTPACK_OUTPUT_DIR, PROMPTPACK_BASE_NAME, PROMPTPACK_FORMATS), which a
.env file in the working directory may supply.`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringSliceVar(&packGroups, "groups", nil, "Extension groups to include (default: all)")
	packCmd.Flags().StringSliceVar(&packFormats, "format", []string{"text"}, "Output formats: text, markdown, html")
	packCmd.Flags().StringVar(&packOutputDir, "output-dir", ".", "Directory for artifacts and the run log")
	packCmd.Flags().StringVar(&packBaseName, "base-name", "digest", "Artifact filename stem")
	packCmd.Flags().StringSliceVar(&packIgnore, "ignore", nil, "Extra gitignore-style patterns (repeatable)")
	packCmd.Flags().BoolVar(&packNoGitignore, "no-gitignore", false, "Do not load the root's .gitignore")
	packCmd.Flags().BoolVar(&packNoRecursive, "no-recursive", false, "Only scan the root directory itself")
	packCmd.Flags().IntVar(&packMaxFileSize, "max-file-size", 1024, "Per-file size ceiling in KB (0 disables)")
	packCmd.Flags().IntVar(&packMaxFiles, "max-files", 5000, "Maximum number of accepted files (0 disables)")
	packCmd.Flags().IntVar(&packMaxTotalSize, "max-total-size", 100, "Aggregate size ceiling in MB (0 disables)")
	packCmd.Flags().IntVar(&packMaxBase64, "max-base64-block", 64, "Largest embedded base64 block in KB (0 disables)")
	packCmd.Flags().IntVar(&packMaxLineLen, "max-line-length", 5000, "Longest acceptable line (0 disables)")
	packCmd.Flags().IntVar(&packMaxTokenLen, "max-token-length", 2000, "Longest acceptable token (0 disables)")
	packCmd.Flags().IntVar(&packAuditEntries, "audit-entries", 100, "Symlink audit log cap")
	packCmd.Flags().BoolVar(&packAllowSymlinks, "allow-symlinks", false, "Follow symlinks (audited)")
	packCmd.Flags().BoolVar(&packKeepSecrets, "keep-secrets", false, "Disable secret redaction")
	packCmd.Flags().StringVar(&packSecretsInclude, "secrets-include", "", "Only redact categories matching regex (comma-separated)")
	packCmd.Flags().StringVar(&packSecretsExclude, "secrets-exclude", "", "Skip redacting categories matching regex (comma-separated)")
}

// envFallback fills a flag from the environment when it was not set on the
// command line.
func envFallback(cmd *cobra.Command, flag, key string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if val := os.Getenv(key); val != "" {
		_ = cmd.Flags().Set(flag, val)
	}
}

func runPack(cmd *cobra.Command, args []string) error {
	root := args[0]

	envFallback(cmd, "output-dir", "PROMPTPACK_OUTPUT_DIR")
	envFallback(cmd, "base-name", "PROMPTPACK_BASE_NAME")
	envFallback(cmd, "format", "PROMPTPACK_FORMATS")
	envFallback(cmd, "groups", "PROMPTPACK_GROUPS")

	limits := promptpack.DefaultLimits()
	limits.MaxFileSizeKB = packMaxFileSize
	limits.MaxFiles = packMaxFiles
	limits.MaxTotalSizeMB = packMaxTotalSize
	limits.MaxBase64BlockKB = packMaxBase64
	limits.MaxLineLength = packMaxLineLen
	limits.MaxTokenLength = packMaxTokenLen
	limits.MaxSymlinkAuditEntries = packAuditEntries
	limits.AllowSymlinks = packAllowSymlinks
	limits.ExcludeSecrets = !packKeepSecrets

	opts := []promptpack.Option{
		promptpack.WithRoot(root),
		promptpack.WithGroups(packGroups...),
		promptpack.WithFormats(packFormats...),
		promptpack.WithOutputDir(packOutputDir),
		promptpack.WithBaseName(packBaseName),
		promptpack.WithLimits(limits),
		promptpack.WithIgnorePatterns(packIgnore...),
		promptpack.WithToolVersion(version),
		promptpack.WithSecretFilter(redact.FilterConfig{
			Include: redact.ParsePatterns(packSecretsInclude),
			Exclude: redact.ParsePatterns(packSecretsExclude),
		}),
	}
	if packNoGitignore {
		opts = append(opts, promptpack.WithoutVCSIgnore())
	}
	if packNoRecursive {
		opts = append(opts, promptpack.NonRecursive())
	}
	if logger := progressLogger(); logger != nil {
		opts = append(opts, promptpack.WithLogger(logger))
	}

	packer, err := promptpack.New(opts...)
	if err != nil {
		return err
	}

	// One writer per output directory; concurrent runs against the same
	// directory would clobber each other's artifacts.
	if err := os.MkdirAll(packOutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	lock := flock.New(filepath.Join(packOutputDir, packBaseName+".lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking output directory: %w", err)
	}
	if !acquired {
		return fmt.Errorf("output directory is in use by another promptpack run")
	}
	defer lock.Unlock()

	result, err := packer.Run(cmd.Context())
	if err != nil {
		return err
	}

	s := newStyles()
	out := cmd.OutOrStdout()

	if !result.Success {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n",
			s.fail.Sprint("Run failed:"), result.Failure.Code)
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", result.Failure.Hint)
		if result.LogPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "  Run log: %s\n", result.LogPath)
		}
		return fmt.Errorf("run failed: %s", result.Failure.Code)
	}

	if !quiet {
		fmt.Fprintf(out, "%s %s files packed, %s skipped, %s read\n",
			s.ok.Sprint("Digest complete:"),
			humanize.Comma(int64(result.FilesProcessed)),
			humanize.Comma(int64(result.FilesSkipped)),
			humanize.Bytes(uint64(result.BytesAccepted)))
		for _, artifact := range result.Artifacts {
			fmt.Fprintf(out, "  %s\n", s.path.Sprint(artifact))
		}
		fmt.Fprintf(out, "  Run log: %s\n", s.path.Sprint(result.LogPath))
	}
	return nil
}

// styles holds the color styles for terminal output.
type styles struct {
	ok   *color.Color
	fail *color.Color
	path *color.Color
}

func newStyles() *styles {
	switch colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // "auto"
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	}
	return &styles{
		ok:   color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		path: color.New(color.FgCyan),
	}
}

// progressLogger builds the stderr console logger implied by the verbosity
// flags. Nil means run-log only.
func progressLogger() *zap.Logger {
	if quiet {
		return nil
	}
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), level)
	return zap.New(core)
}
