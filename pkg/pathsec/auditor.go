package pathsec

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/promptpack/promptpack/pkg/types"
)

// Auditor records symlinks encountered during one run. The collection is
// capped: once MaxEntries is reached further symlinks are still processed
// but no longer recorded, and a one-time notice is logged.
type Auditor struct {
	max        int
	entries    []types.SymlinkAuditEntry
	capReached bool
	logger     *zap.Logger
}

// NewAuditor creates an auditor with the given entry cap. A nil logger is
// replaced with a nop logger.
func NewAuditor(maxEntries int, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{max: maxEntries, logger: logger}
}

// Audit inspects path for symlink-ness. Non-symlinks pass through untouched.
// If path is a symlink and allowSymlinks is false it returns a
// *SymlinkError. Otherwise the link target is resolved, classified and
// appended to the audit collection if the cap has not been reached. Broken
// symlinks are still audited; a dangling link is itself a signal worth
// recording.
func (a *Auditor) Audit(path string, allowSymlinks bool) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	if !allowSymlinks {
		return &SymlinkError{Path: path}
	}

	target, err := os.Readlink(path)
	if err != nil {
		target = ""
	}
	kind := "missing"
	if resolved, err := os.Stat(path); err == nil {
		if resolved.IsDir() {
			kind = "dir"
		} else {
			kind = "file"
		}
	}

	if len(a.entries) >= a.max {
		if !a.capReached {
			a.capReached = true
			a.logger.Warn("symlink audit limit reached; further symlinks will not be recorded",
				zap.Int("maxEntries", a.max))
		}
		return nil
	}

	a.entries = append(a.entries, types.SymlinkAuditEntry{
		SymlinkPath: path,
		TargetPath:  target,
		TargetKind:  kind,
		Timestamp:   time.Now(),
	})
	a.logger.Debug("audited symlink",
		zap.String("symlink", path),
		zap.String("target", target),
		zap.String("kind", kind))
	return nil
}

// Entries returns the recorded audit entries.
func (a *Auditor) Entries() []types.SymlinkAuditEntry {
	return a.entries
}

// CapReached reports whether the audit cap was hit during the run.
func (a *Auditor) CapReached() bool {
	return a.capReached
}
