package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/promptpack/promptpack/pkg/discover"
	"github.com/promptpack/promptpack/pkg/output"
	"github.com/promptpack/promptpack/pkg/types"
)

// Hook is the base plugin contract. Hooks are already-loaded, validated
// objects; where they come from is the caller's concern. A hook returning an
// error or panicking never crashes the run: the failure is logged and the
// pre-hook value is kept.
type Hook interface {
	Name() string
}

// RunHook is consulted before processing starts and may reorder or drop
// candidates.
type RunHook interface {
	Hook
	BeforeRun(meta types.RunMetadata, candidates []types.CandidateFile) ([]types.CandidateFile, error)
}

// FileHook may transform a record before it is accepted. Returning a nil
// record with a nil error vetoes the file: an intentional per-file skip, not
// an error.
type FileHook interface {
	Hook
	BeforeFile(record *types.FileRecord) (*types.FileRecord, error)
}

// RenderHook may rewrite a file's rendered content just before a generator
// writes it.
type RenderHook interface {
	Hook
	AfterFile(record *types.FileRecord, rendered string) (string, error)
}

// ResultHook sees the final result and may enrich it.
type ResultHook interface {
	Hook
	AfterRun(result *types.RunResult) (*types.RunResult, error)
}

// ExtensionRegistrar contributes extension groups merged before discovery.
type ExtensionRegistrar interface {
	Hook
	RegisterExtensions() []*discover.ExtensionGroup
}

// FormatRegistrar contributes additional output generators.
type FormatRegistrar interface {
	Hook
	RegisterFormats() []output.Generator
}

// safeCall runs fn, converting a panic into an error so one hook cannot
// take down the run.
func safeCall(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook %s panicked: %v", name, r)
		}
	}()
	return fn()
}

// hookRunner applies each hook kind across the configured hook list.
type hookRunner struct {
	hooks  []Hook
	logger *zap.Logger
}

func newHookRunner(hooks []Hook, logger *zap.Logger) *hookRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hookRunner{hooks: hooks, logger: logger}
}

func (h *hookRunner) registerExtensions() []*discover.ExtensionGroup {
	var groups []*discover.ExtensionGroup
	for _, hook := range h.hooks {
		reg, ok := hook.(ExtensionRegistrar)
		if !ok {
			continue
		}
		err := safeCall(hook.Name(), func() error {
			groups = append(groups, reg.RegisterExtensions()...)
			return nil
		})
		if err != nil {
			h.logger.Warn("extension registrar failed", zap.String("hook", hook.Name()), zap.Error(err))
		}
	}
	return groups
}

func (h *hookRunner) registerFormats() []output.Generator {
	var generators []output.Generator
	for _, hook := range h.hooks {
		reg, ok := hook.(FormatRegistrar)
		if !ok {
			continue
		}
		err := safeCall(hook.Name(), func() error {
			generators = append(generators, reg.RegisterFormats()...)
			return nil
		})
		if err != nil {
			h.logger.Warn("format registrar failed", zap.String("hook", hook.Name()), zap.Error(err))
		}
	}
	return generators
}

func (h *hookRunner) beforeRun(meta types.RunMetadata, candidates []types.CandidateFile) []types.CandidateFile {
	for _, hook := range h.hooks {
		rh, ok := hook.(RunHook)
		if !ok {
			continue
		}
		current := candidates
		err := safeCall(hook.Name(), func() error {
			next, err := rh.BeforeRun(meta, current)
			if err != nil {
				return err
			}
			candidates = next
			return nil
		})
		if err != nil {
			h.logger.Warn("beforeRun hook failed; keeping previous candidates",
				zap.String("hook", hook.Name()), zap.Error(err))
			candidates = current
		}
	}
	return candidates
}

// beforeFile returns the transformed record, or nil with vetoed=true when a
// hook intentionally dropped the file.
func (h *hookRunner) beforeFile(record *types.FileRecord) (result *types.FileRecord, vetoedBy string) {
	for _, hook := range h.hooks {
		fh, ok := hook.(FileHook)
		if !ok {
			continue
		}
		current := record
		err := safeCall(hook.Name(), func() error {
			next, err := fh.BeforeFile(current)
			if err != nil {
				return err
			}
			record = next
			return nil
		})
		if err != nil {
			h.logger.Warn("beforeFile hook failed; keeping previous record",
				zap.String("hook", hook.Name()), zap.Error(err))
			record = current
			continue
		}
		if record == nil {
			return nil, hook.Name()
		}
	}
	return record, ""
}

// renderFilter builds the output.RenderFilter that chains every RenderHook.
// Returns nil when no hook implements AfterFile.
func (h *hookRunner) renderFilter() output.RenderFilter {
	var renderHooks []RenderHook
	for _, hook := range h.hooks {
		if rh, ok := hook.(RenderHook); ok {
			renderHooks = append(renderHooks, rh)
		}
	}
	if len(renderHooks) == 0 {
		return nil
	}
	return func(record *types.FileRecord, rendered string) string {
		for _, rh := range renderHooks {
			current := rendered
			err := safeCall(rh.Name(), func() error {
				next, err := rh.AfterFile(record, current)
				if err != nil {
					return err
				}
				rendered = next
				return nil
			})
			if err != nil {
				h.logger.Warn("afterFile hook failed; keeping previous content",
					zap.String("hook", rh.Name()), zap.Error(err))
				rendered = current
			}
		}
		return rendered
	}
}

func (h *hookRunner) afterRun(result *types.RunResult) *types.RunResult {
	for _, hook := range h.hooks {
		rh, ok := hook.(ResultHook)
		if !ok {
			continue
		}
		current := result
		err := safeCall(hook.Name(), func() error {
			next, err := rh.AfterRun(current)
			if err != nil {
				return err
			}
			result = next
			return nil
		})
		if err != nil || result == nil {
			h.logger.Warn("afterRun hook failed; keeping previous result",
				zap.String("hook", hook.Name()), zap.Error(err))
			result = current
		}
	}
	return result
}
