package types

import "time"

// CandidateFile is a discovered path that has not yet passed security or
// content validation. RelativePath is forward-slash normalized so sorting
// and anchors are stable across platforms.
type CandidateFile struct {
	AbsolutePath string
	RelativePath string
}

// FileRecord is a fully validated, content-loaded file ready for rendering.
// The orchestrator owns it until it is handed to the output generators,
// which only read it.
type FileRecord struct {
	RelativePath string
	AbsolutePath string
	ByteSize     int64
	Content      string
	Issues       []Issue
}

// Categories returns the secret categories attached to the record, if any.
func (r *FileRecord) Categories() []string {
	for _, issue := range r.Issues {
		if s, ok := issue.(SecretFound); ok {
			return s.Categories
		}
	}
	return nil
}

// Minified reports whether the record was tagged as minified content.
func (r *FileRecord) Minified() bool {
	for _, issue := range r.Issues {
		if issue.Kind() == KindMinifiedContent {
			return true
		}
	}
	return false
}

// SkipRecord captures why a candidate was rejected.
type SkipRecord struct {
	RelativePath string
	Reason       string
}

// SymlinkAuditEntry records a followed symbolic link and its resolved target.
type SymlinkAuditEntry struct {
	SymlinkPath string
	TargetPath  string
	TargetKind  string // "file", "dir" or "missing"
	Timestamp   time.Time
}

// RunMetadata describes one run; it is shared read-only with the output
// generators and echoed into the run log.
type RunMetadata struct {
	RunID       string
	Root        string
	StartedAt   time.Time
	ToolVersion string
	Formats     []string
}
