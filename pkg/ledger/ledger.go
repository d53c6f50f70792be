// Package ledger tracks run-wide acceptance totals against configured
// ceilings. File-count and aggregate-size breaches abort the run; a single
// oversized file is only skipped.
package ledger

import (
	"fmt"
	"sync"

	"github.com/promptpack/promptpack/pkg/types"
)

// FileTooLargeError reports a single file exceeding the per-file ceiling.
// The file is skipped; the run continues.
type FileTooLargeError struct {
	SizeBytes int64
	MaxKB     int
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file size %d bytes exceeds per-file limit %dKB", e.SizeBytes, e.MaxKB)
}

// LimitError reports a run-wide ceiling breach. The whole run aborts with
// the carried failure code because count and aggregate-size totals are
// global guarantees, not per-file ones.
type LimitError struct {
	Code          types.FailureCode
	FilesAccepted int
	BytesAccepted int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s after accepting %d files (%d bytes)", e.Code, e.FilesAccepted, e.BytesAccepted)
}

// Hint returns the remediation suggestion for the breached limit.
func (e *LimitError) Hint() string {
	switch e.Code {
	case types.FailTooManyFiles:
		return "too many files matched; narrow the extension groups or add ignore patterns"
	default:
		return "aggregate size limit reached; narrow the extension groups, add ignore patterns, or raise the total size limit"
	}
}

// Ledger is the run-wide counter. Counts are monotonically increasing for
// the run's lifetime. Safe for concurrent use.
type Ledger struct {
	mu sync.Mutex

	maxFiles      int
	maxFileBytes  int64
	maxTotalBytes int64

	filesAccepted int
	bytesAccepted int64
}

// New creates a Ledger from the run's limits.
func New(limits types.Limits) *Ledger {
	return &Ledger{
		maxFiles:      limits.MaxFiles,
		maxFileBytes:  int64(limits.MaxFileSizeKB) * 1024,
		maxTotalBytes: int64(limits.MaxTotalSizeMB) * 1024 * 1024,
	}
}

// TryAccept checks a file of the given size against all three ceilings and,
// if every check passes, records the acceptance. It is called before content
// is loaded so an over-limit file is never held in memory.
func (l *Ledger) TryAccept(sizeBytes int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxFileBytes > 0 && sizeBytes > l.maxFileBytes {
		return &FileTooLargeError{SizeBytes: sizeBytes, MaxKB: int(l.maxFileBytes / 1024)}
	}
	if l.maxFiles > 0 && l.filesAccepted+1 > l.maxFiles {
		return &LimitError{
			Code:          types.FailTooManyFiles,
			FilesAccepted: l.filesAccepted,
			BytesAccepted: l.bytesAccepted,
		}
	}
	if l.maxTotalBytes > 0 && l.bytesAccepted+sizeBytes > l.maxTotalBytes {
		return &LimitError{
			Code:          types.FailSizeLimitExceeded,
			FilesAccepted: l.filesAccepted,
			BytesAccepted: l.bytesAccepted,
		}
	}

	l.filesAccepted++
	l.bytesAccepted += sizeBytes
	return nil
}

// FilesAccepted returns the accepted file count so far.
func (l *Ledger) FilesAccepted() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filesAccepted
}

// BytesAccepted returns the accepted byte total so far.
func (l *Ledger) BytesAccepted() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bytesAccepted
}
