// Package discover resolves extension groups to a glob, walks the root
// without following symlinks, applies layered ignore rules, and yields a
// deterministically ordered candidate list.
package discover

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/promptpack/promptpack/pkg/types"
)

// BuildGlob builds one doublestar expression matching any of the given
// extensions, e.g. "**/*{.go,.py}".
func BuildGlob(extensions []string, recursive bool) string {
	alts := "{" + strings.Join(extensions, ",") + "}"
	if recursive {
		return "**/*" + alts
	}
	return "*" + alts
}

// Discover walks root and returns candidates matching the extension glob and
// surviving every ignore layer, sorted by normalized relative path. The walk
// itself never follows symlinks; symlink policy is decided later at
// validation, where it can be audited and logged. Directories are never
// yielded.
func Discover(ctx context.Context, root string, extensions []string, recursive bool, rules *IgnoreRuleSet, logger *zap.Logger) ([]types.CandidateFile, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pattern := BuildGlob(extensions, recursive)
	logger.Debug("discovering candidates",
		zap.String("root", root),
		zap.String("glob", pattern),
		zap.Bool("recursive", recursive))

	var candidates []types.CandidateFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("error accessing path during walk", zap.Error(err))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive {
				return filepath.SkipDir
			}
			if layer, ignored := rules.Match(rel); ignored {
				logger.Debug("skipping ignored directory",
					zap.String("path", rel),
					zap.String("layer", layer))
				return filepath.SkipDir
			}
			return nil
		}

		ok, matchErr := doublestar.Match(pattern, rel)
		if matchErr != nil {
			return matchErr
		}
		if !ok {
			return nil
		}
		if layer, ignored := rules.Match(rel); ignored {
			logger.Debug("skipping ignored file",
				zap.String("path", rel),
				zap.String("layer", layer))
			return nil
		}

		candidates = append(candidates, types.CandidateFile{
			AbsolutePath: path,
			RelativePath: rel,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Filesystem iteration order varies by platform; sorting keeps output
	// reproducible.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].RelativePath < candidates[j].RelativePath
	})
	return candidates, nil
}
