// Package runlog writes the per-run log file: a JSON-lines stream of run
// events followed by a summary entry. The log is the only state that
// survives a run.
package runlog

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/promptpack/promptpack/pkg/types"
)

// Writer owns the log file and the zap logger bound to it.
type Writer struct {
	path   string
	file   *os.File
	logger *zap.Logger
}

// New opens (truncates) the log file at path and builds a JSON logger over
// it.
func New(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating run log: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zap.DebugLevel)

	return &Writer{
		path:   path,
		file:   file,
		logger: zap.New(core),
	}, nil
}

// Path returns the log file path.
func (w *Writer) Path() string { return w.path }

// Logger returns the zap logger writing into the run log.
func (w *Writer) Logger() *zap.Logger { return w.logger }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	_ = w.logger.Sync()
	return w.file.Close()
}

// Summary aggregates the run for the final log entry. Secret values never
// appear here, only category names and counts.
type Summary struct {
	Meta            types.RunMetadata
	Limits          types.Limits
	Groups          []string
	IgnoreLayers    []string
	FilesFound      int
	FilesProcessed  int
	FilesSkipped    int
	BytesAccepted   int64
	Skips           []types.SkipRecord
	SecretCounts    map[string]int
	SymlinkAudit    []types.SymlinkAuditEntry
	AuditCapReached bool
	Duration        time.Duration
}

// WriteConfig echoes the run configuration at the start of the log.
func (w *Writer) WriteConfig(meta types.RunMetadata, limits types.Limits, groups []string) {
	w.logger.Info("run configuration",
		zap.String("runID", meta.RunID),
		zap.String("root", meta.Root),
		zap.Strings("formats", meta.Formats),
		zap.Strings("groups", groups),
		zap.Int("maxFileSizeKB", limits.MaxFileSizeKB),
		zap.Int("maxFiles", limits.MaxFiles),
		zap.Int("maxTotalSizeMB", limits.MaxTotalSizeMB),
		zap.Int("maxBase64BlockKB", limits.MaxBase64BlockKB),
		zap.Int("maxLineLength", limits.MaxLineLength),
		zap.Int("maxTokenLength", limits.MaxTokenLength),
		zap.Int("maxSymlinkAuditEntries", limits.MaxSymlinkAuditEntries),
		zap.Bool("allowSymlinks", limits.AllowSymlinks),
		zap.Bool("excludeSecrets", limits.ExcludeSecrets))
}

// WriteSummary emits the per-stage counts, itemized skips, secret category
// counts, symlink audit entries and throughput for the run.
func (w *Writer) WriteSummary(s Summary) {
	for _, skip := range s.Skips {
		w.logger.Info("file skipped",
			zap.String("path", skip.RelativePath),
			zap.String("reason", skip.Reason))
	}

	categories := make([]string, 0, len(s.SecretCounts))
	for c := range s.SecretCounts {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		w.logger.Info("secret category redacted",
			zap.String("category", c),
			zap.Int("files", s.SecretCounts[c]))
	}

	for _, entry := range s.SymlinkAudit {
		w.logger.Info("symlink audited",
			zap.String("symlink", entry.SymlinkPath),
			zap.String("target", entry.TargetPath),
			zap.String("kind", entry.TargetKind),
			zap.Time("at", entry.Timestamp))
	}
	if s.AuditCapReached {
		w.logger.Warn("symlink audit cap reached; later symlinks were not recorded")
	}

	throughput := float64(0)
	if secs := s.Duration.Seconds(); secs > 0 {
		throughput = float64(s.BytesAccepted) / secs
	}
	w.logger.Info("run summary",
		zap.String("runID", s.Meta.RunID),
		zap.Int("filesFound", s.FilesFound),
		zap.Int("filesProcessed", s.FilesProcessed),
		zap.Int("filesSkipped", s.FilesSkipped),
		zap.Int64("bytesAccepted", s.BytesAccepted),
		zap.Duration("duration", s.Duration),
		zap.Float64("bytesPerSecond", throughput))
}
