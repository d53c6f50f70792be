// Package promptpack aggregates a project's source files into a single
// reviewable digest.
//
// A Packer walks a root directory, selects files by extension group,
// applies layered ignore rules, enforces path and resource boundaries,
// redacts embedded secrets, and streams the surviving files into one or
// more digest artifacts alongside a JSON-lines run log.
//
// # Basic Usage
//
// Create a packer and run it against a directory:
//
//	packer, err := promptpack.New(
//	    promptpack.WithRoot("./myproject"),
//	    promptpack.WithGroups("backend", "config"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := packer.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Success {
//	    fmt.Printf("run failed: %s (%s)\n", result.Failure.Code, result.Failure.Hint)
//	}
//
// # Output Formats
//
// Text, markdown and HTML artifacts can be produced in one run:
//
//	packer, err := promptpack.New(
//	    promptpack.WithRoot("."),
//	    promptpack.WithFormats("text", "markdown", "html"),
//	    promptpack.WithOutputDir("./out"),
//	)
package promptpack

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promptpack/promptpack/pkg/pipeline"
	"github.com/promptpack/promptpack/pkg/redact"
	"github.com/promptpack/promptpack/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/promptpack/promptpack" without subpackages.
type (
	// RunResult is the typed outcome of a run.
	RunResult = types.RunResult

	// Failure describes why a run aborted.
	Failure = types.Failure

	// FailureCode enumerates run-level failure reasons.
	FailureCode = types.FailureCode

	// Limits holds every resource ceiling and security flag for a run.
	Limits = types.Limits

	// FileRecord is one accepted file with its content and advisory issues.
	FileRecord = types.FileRecord

	// Hook is the plugin contract; see the pipeline package for the
	// seam-specific interfaces (RunHook, FileHook, RenderHook, ResultHook).
	Hook = pipeline.Hook
)

// Re-export failure codes.
const (
	FailTooManyFiles      = types.FailTooManyFiles
	FailSizeLimitExceeded = types.FailSizeLimitExceeded
	FailPathTraversal     = types.FailPathTraversal
	FailSymlinkNotAllowed = types.FailSymlinkNotAllowed
	FailRootNotFound      = types.FailRootNotFound
	FailNoValidExtensions = types.FailNoValidExtensions
	FailCancelled         = types.FailCancelled
)

// Packer runs digest builds. A Packer is cheap to create and safe to reuse;
// every Run gets fresh per-run state (ledger, symlink audit, binary cache).
type Packer struct {
	cfg pipeline.Config
}

// Option configures a Packer.
type Option func(*pipeline.Config)

// WithRoot sets the directory to aggregate. Required.
func WithRoot(root string) Option {
	return func(c *pipeline.Config) { c.Root = root }
}

// WithGroups selects extension groups by name. Empty or "all" selects every
// builtin group.
func WithGroups(groups ...string) Option {
	return func(c *pipeline.Config) { c.Groups = groups }
}

// WithFormats enables output formats by name ("text", "markdown", "html").
// Default is text only.
func WithFormats(formats ...string) Option {
	return func(c *pipeline.Config) { c.Formats = formats }
}

// WithOutputDir sets where artifacts and the run log are written.
// Default is the current directory.
func WithOutputDir(dir string) Option {
	return func(c *pipeline.Config) { c.OutputDir = dir }
}

// WithBaseName sets the artifact filename stem. Default is "digest".
func WithBaseName(name string) Option {
	return func(c *pipeline.Config) { c.BaseName = name }
}

// WithLimits replaces the default resource limits wholesale.
func WithLimits(limits Limits) Option {
	return func(c *pipeline.Config) { c.Limits = limits }
}

// WithIgnorePatterns layers gitignore-style patterns on top of the root's
// .gitignore.
func WithIgnorePatterns(patterns ...string) Option {
	return func(c *pipeline.Config) { c.UserIgnorePatterns = patterns }
}

// WithoutVCSIgnore disables loading <root>/.gitignore.
func WithoutVCSIgnore() Option {
	return func(c *pipeline.Config) { c.DisableVCSIgnore = true }
}

// NonRecursive restricts discovery to the root directory itself.
func NonRecursive() Option {
	return func(c *pipeline.Config) { c.Recursive = false }
}

// WithSecretFilter narrows the builtin secret patterns by category using
// include/exclude regular expressions.
func WithSecretFilter(filter redact.FilterConfig) Option {
	return func(c *pipeline.Config) { c.SecretFilter = filter }
}

// WithHooks installs plugin hooks. Hooks must already be loaded and
// validated; a misbehaving hook is logged and neutralized, never fatal.
func WithHooks(hooks ...Hook) Option {
	return func(c *pipeline.Config) { c.Hooks = hooks }
}

// WithLogger attaches a progress logger in addition to the run log.
func WithLogger(logger *zap.Logger) Option {
	return func(c *pipeline.Config) { c.Logger = logger }
}

// WithToolVersion stamps artifacts and the run log with a version string.
func WithToolVersion(version string) Option {
	return func(c *pipeline.Config) { c.ToolVersion = version }
}

// New creates a Packer with the given options.
//
// By default, the packer:
//   - Selects every builtin extension group
//   - Walks the root recursively
//   - Applies the default resource limits (see DefaultLimits)
//   - Redacts secrets using all builtin patterns
//   - Produces a text artifact named digest.txt
func New(opts ...Option) (*Packer, error) {
	cfg := pipeline.Config{
		Recursive: true,
		Limits:    types.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("root directory is required; use WithRoot")
	}
	return &Packer{cfg: cfg}, nil
}

// Run executes one aggregation run. Run-level failures (limits exceeded,
// missing root, cancellation) are reported inside the RunResult; the error
// return is reserved for environmental problems such as an unwritable
// output directory.
func (p *Packer) Run(ctx context.Context) (*RunResult, error) {
	orch, err := pipeline.New(p.cfg)
	if err != nil {
		return nil, err
	}
	return orch.Run(ctx)
}

// Limits returns the limits the packer will apply.
func (p *Packer) Limits() Limits {
	return p.cfg.Limits
}

// DefaultLimits returns the default resource limits, useful as a base for
// WithLimits:
//
//	limits := promptpack.DefaultLimits()
//	limits.MaxFiles = 100
//	packer, err := promptpack.New(promptpack.WithRoot("."), promptpack.WithLimits(limits))
func DefaultLimits() Limits {
	return types.DefaultLimits()
}
