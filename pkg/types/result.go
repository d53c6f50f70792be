package types

// FailureCode is a machine-matchable reason for a failed run.
type FailureCode string

const (
	FailTooManyFiles      FailureCode = "TOO_MANY_FILES"
	FailSizeLimitExceeded FailureCode = "SIZE_LIMIT_EXCEEDED"
	FailPathTraversal     FailureCode = "PATH_TRAVERSAL"
	FailSymlinkNotAllowed FailureCode = "SYMLINK_NOT_ALLOWED"
	FailRootNotFound      FailureCode = "ROOT_NOT_FOUND"
	FailNoValidExtensions FailureCode = "NO_VALID_EXTENSIONS"
	FailCancelled         FailureCode = "CANCELLED"
)

// Failure pairs a failure code with a remediation hint. The hint never
// contains raw filesystem error text or absolute paths beyond what the
// caller supplied.
type Failure struct {
	Code FailureCode
	Hint string
}

// RunResult is the discriminated outcome of one run. On success Artifacts
// holds the generated output paths; on failure Failure is non-nil and no
// artifacts are written.
type RunResult struct {
	Success        bool
	Artifacts      []string
	LogPath        string
	FilesFound     int
	FilesProcessed int
	FilesSkipped   int
	BytesAccepted  int64
	Failure        *Failure
}

// Fail constructs a failed result carrying partial progress counts.
func Fail(code FailureCode, hint string, found, processed, skipped int) *RunResult {
	return &RunResult{
		Success:        false,
		FilesFound:     found,
		FilesProcessed: processed,
		FilesSkipped:   skipped,
		Failure:        &Failure{Code: code, Hint: hint},
	}
}
