// Package pipeline drives candidates through validation, inspection,
// redaction and output generation, producing a typed run result. All
// per-run state (symlink auditor, binary cache, ledger) is owned by the
// Orchestrator; runs never share anything.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/promptpack/promptpack/pkg/discover"
	"github.com/promptpack/promptpack/pkg/inspect"
	"github.com/promptpack/promptpack/pkg/ledger"
	"github.com/promptpack/promptpack/pkg/output"
	"github.com/promptpack/promptpack/pkg/pathsec"
	"github.com/promptpack/promptpack/pkg/redact"
	"github.com/promptpack/promptpack/pkg/runlog"
	"github.com/promptpack/promptpack/pkg/types"
)

// Config describes one run.
type Config struct {
	// Root is the directory boundary for the run.
	Root string

	// Groups are the requested extension group names; empty or "all"
	// selects every group.
	Groups []string

	// UserIgnorePatterns are explicit gitignore-style patterns layered on
	// top of the VCS ignore file.
	UserIgnorePatterns []string

	// DisableVCSIgnore skips loading <root>/.gitignore.
	DisableVCSIgnore bool

	// Recursive walks subdirectories.
	Recursive bool

	// Limits holds every ceiling and flag.
	Limits types.Limits

	// Formats are the enabled output format names.
	Formats []string

	// OutputDir receives the artifacts and the run log.
	OutputDir string

	// BaseName is the artifact filename stem, e.g. "digest".
	BaseName string

	// SecretFilter optionally narrows the builtin secret patterns by
	// category.
	SecretFilter redact.FilterConfig

	// Hooks are the plugin hook objects, already loaded and validated.
	Hooks []Hook

	// ToolVersion is echoed into artifacts and the run log.
	ToolVersion string

	// Logger receives progress events in addition to the run log. Nil
	// means run-log only.
	Logger *zap.Logger
}

// Orchestrator executes one run.
type Orchestrator struct {
	cfg Config
}

// New validates static configuration and returns an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("root is required")
	}
	if cfg.BaseName == "" {
		cfg.BaseName = "digest"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = []string{"text"}
	}
	return &Orchestrator{cfg: cfg}, nil
}

// Run performs the full pipeline. Run-level failures are reported inside
// the RunResult; the error return is reserved for unexpected I/O failures
// (e.g. the output directory not being writable).
func (o *Orchestrator) Run(ctx context.Context) (*types.RunResult, error) {
	start := time.Now()
	cfg := o.cfg

	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	meta := types.RunMetadata{
		RunID:       uuid.NewString(),
		Root:        absRoot,
		StartedAt:   start,
		ToolVersion: cfg.ToolVersion,
		Formats:     cfg.Formats,
	}

	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return types.Fail(types.FailRootNotFound,
			"root directory does not exist or is not a directory", 0, 0, 0), nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	log, err := runlog.New(filepath.Join(cfg.OutputDir, cfg.BaseName+".log.jsonl"))
	if err != nil {
		return nil, err
	}
	defer log.Close()
	progress := cfg.Logger

	hooks := newHookRunner(cfg.Hooks, log.Logger())

	// Output generators: builtin formats plus plugin-registered ones.
	generators := make([]output.Generator, 0, len(cfg.Formats))
	for _, name := range cfg.Formats {
		gen, err := output.ByName(name)
		if err != nil {
			return nil, err
		}
		generators = append(generators, gen)
	}
	generators = append(generators, hooks.registerFormats()...)

	// Extension groups: builtin merged with plugin contributions.
	builtin, err := discover.NewGroupLoader().LoadBuiltinGroups()
	if err != nil {
		return nil, fmt.Errorf("loading extension groups: %w", err)
	}
	groups := discover.MergeGroups(builtin, hooks.registerExtensions())
	extensions, warnings := discover.ResolveExtensions(groups, cfg.Groups)
	for _, w := range warnings {
		log.Logger().Warn(w)
	}
	log.WriteConfig(meta, cfg.Limits, cfg.Groups)
	if len(extensions) == 0 {
		result := types.Fail(types.FailNoValidExtensions,
			"no valid extensions configured; check the requested group names", 0, 0, 0)
		return hooks.afterRun(result), nil
	}

	// Secret patterns.
	var redactor *redact.Redactor
	if cfg.Limits.ExcludeSecrets {
		patterns, err := redact.NewLoader().LoadBuiltinPatterns()
		if err != nil {
			return nil, fmt.Errorf("loading secret patterns: %w", err)
		}
		patterns, err = redact.Filter(patterns, cfg.SecretFilter)
		if err != nil {
			return nil, err
		}
		redactor = redact.New(patterns)
	}

	// Ignore layers: VCS file, user patterns, self-exclusion of our own
	// artifacts and log.
	rules := discover.NewIgnoreRuleSet()
	if !cfg.DisableVCSIgnore {
		if err := rules.AddVCSIgnoreFile(filepath.Join(absRoot, ".gitignore")); err != nil {
			return nil, fmt.Errorf("loading .gitignore: %w", err)
		}
	}
	rules.AddPatterns("user", cfg.UserIgnorePatterns)
	self := []string{cfg.BaseName + ".log.jsonl"}
	for _, gen := range generators {
		self = append(self, cfg.BaseName+gen.Extension())
	}
	rules.AddSelfExclusions(self...)

	candidates, err := discover.Discover(ctx, absRoot, extensions, cfg.Recursive, rules, log.Logger())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result := types.Fail(types.FailCancelled, "run cancelled during discovery", 0, 0, 0)
			return hooks.afterRun(result), nil
		}
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	candidates = hooks.beforeRun(meta, candidates)

	// Per-run state, never shared across runs.
	auditor := pathsec.NewAuditor(cfg.Limits.MaxSymlinkAuditEntries, log.Logger())
	inspector, err := inspect.New(cfg.Limits)
	if err != nil {
		return nil, err
	}
	book := ledger.New(cfg.Limits)

	var (
		records      []*types.FileRecord
		skips        []types.SkipRecord
		secretCounts = make(map[string]int)
	)
	skip := func(rel, reason string) {
		skips = append(skips, types.SkipRecord{RelativePath: rel, Reason: reason})
		log.Logger().Info("file skipped", zap.String("path", rel), zap.String("reason", reason))
	}

	summary := func(found int) runlog.Summary {
		return runlog.Summary{
			Meta:            meta,
			Limits:          cfg.Limits,
			Groups:          cfg.Groups,
			IgnoreLayers:    rules.Layers(),
			FilesFound:      found,
			FilesProcessed:  len(records),
			FilesSkipped:    len(skips),
			BytesAccepted:   book.BytesAccepted(),
			Skips:           skips,
			SecretCounts:    secretCounts,
			SymlinkAudit:    auditor.Entries(),
			AuditCapReached: auditor.CapReached(),
			Duration:        time.Since(start),
		}
	}

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			log.WriteSummary(summary(len(candidates)))
			result := types.Fail(types.FailCancelled, "run cancelled",
				len(candidates), len(records), len(skips))
			return hooks.afterRun(result), nil
		default:
		}

		absPath, err := pathsec.Validate(candidate.AbsolutePath, absRoot)
		if err != nil {
			var traversal *pathsec.TraversalError
			if errors.As(err, &traversal) {
				skip(candidate.RelativePath, "path traversal outside root")
				continue
			}
			skip(candidate.RelativePath, "path validation failed")
			continue
		}

		if err := auditor.Audit(absPath, cfg.Limits.AllowSymlinks); err != nil {
			var symlink *pathsec.SymlinkError
			if errors.As(err, &symlink) {
				skip(candidate.RelativePath, "symlink not allowed")
				continue
			}
			skip(candidate.RelativePath, "file not accessible")
			continue
		}

		info, err := os.Stat(absPath)
		if err != nil {
			skip(candidate.RelativePath, "file not accessible")
			continue
		}

		if err := book.TryAccept(info.Size()); err != nil {
			var tooLarge *ledger.FileTooLargeError
			if errors.As(err, &tooLarge) {
				skip(candidate.RelativePath, tooLarge.Error())
				continue
			}
			var limit *ledger.LimitError
			if errors.As(err, &limit) {
				log.Logger().Error("run aborted on resource limit",
					zap.String("code", string(limit.Code)),
					zap.Int("filesAccepted", limit.FilesAccepted),
					zap.Int64("bytesAccepted", limit.BytesAccepted))
				log.WriteSummary(summary(len(candidates)))
				result := types.Fail(limit.Code, limit.Hint(),
					len(candidates), len(records), len(skips))
				return hooks.afterRun(result), nil
			}
			skip(candidate.RelativePath, "resource check failed")
			continue
		}

		content, err := os.ReadFile(absPath)
		if err != nil {
			skip(candidate.RelativePath, "file not readable")
			continue
		}

		if inspector.IsBinary(absPath, content) {
			skip(candidate.RelativePath, types.BinaryContent{}.Detail())
			continue
		}

		issues := inspector.Inspect(candidate.RelativePath, content)
		if fatal := types.FirstFatal(issues); fatal != nil {
			skip(candidate.RelativePath, fatal.Detail())
			continue
		}

		text := string(content)
		if redactor != nil {
			redacted, categories := redactor.Redact(text)
			if len(categories) > 0 {
				text = redacted
				issues = append(issues, types.SecretFound{Categories: categories})
				for _, c := range categories {
					secretCounts[c]++
				}
				log.Logger().Info("secrets redacted",
					zap.String("path", candidate.RelativePath),
					zap.Strings("categories", categories))
			}
		}

		record := &types.FileRecord{
			RelativePath: candidate.RelativePath,
			AbsolutePath: absPath,
			ByteSize:     info.Size(),
			Content:      text,
			Issues:       issues,
		}
		record, vetoedBy := hooks.beforeFile(record)
		if record == nil {
			skip(candidate.RelativePath, "vetoed by hook "+vetoedBy)
			continue
		}
		records = append(records, record)
	}

	artifacts, err := o.generate(ctx, generators, meta, records, hooks)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.WriteSummary(summary(len(candidates)))
			result := types.Fail(types.FailCancelled, "run cancelled during output generation",
				len(candidates), len(records), len(skips))
			return hooks.afterRun(result), nil
		}
		return nil, err
	}

	log.WriteSummary(summary(len(candidates)))
	result := &types.RunResult{
		Success:        true,
		Artifacts:      artifacts,
		LogPath:        log.Path(),
		FilesFound:     len(candidates),
		FilesProcessed: len(records),
		FilesSkipped:   len(skips),
		BytesAccepted:  book.BytesAccepted(),
	}
	if progress != nil {
		progress.Info("run complete",
			zap.Int("filesProcessed", result.FilesProcessed),
			zap.Int("filesSkipped", result.FilesSkipped))
	}
	return hooks.afterRun(result), nil
}

// generate streams every enabled format in parallel. File order inside each
// artifact is the single sorted record order, so artifacts are reproducible
// run to run. On any failure all partially written artifacts are removed
// rather than left corrupt.
func (o *Orchestrator) generate(ctx context.Context, generators []output.Generator, meta types.RunMetadata, records []*types.FileRecord, hooks *hookRunner) ([]string, error) {
	rc := &output.Context{
		Meta:    meta,
		Records: records,
		Tree:    output.BuildTree(records),
		Filter:  hooks.renderFilter(),
	}

	paths := make([]string, len(generators))
	g, gctx := errgroup.WithContext(ctx)
	for i, gen := range generators {
		gen := gen
		path := filepath.Join(o.cfg.OutputDir, o.cfg.BaseName+gen.Extension())
		paths[i] = path
		g.Go(func() error {
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s artifact: %w", gen.Name(), err)
			}
			w := bufio.NewWriter(file)
			if err := gen.Generate(gctx, w, rc); err != nil {
				file.Close()
				return fmt.Errorf("generating %s artifact: %w", gen.Name(), err)
			}
			if err := w.Flush(); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		})
	}
	if err := g.Wait(); err != nil {
		for _, path := range paths {
			_ = os.Remove(path)
		}
		return nil, err
	}
	return paths, nil
}
