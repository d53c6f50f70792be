package runlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptpack/promptpack/pkg/types"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "line is not valid JSON: %s", scanner.Text())
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestWriter_EmitsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log.jsonl")
	w, err := New(path)
	require.NoError(t, err)

	meta := types.RunMetadata{RunID: "run-1", Root: "/src", Formats: []string{"text"}}
	w.WriteConfig(meta, types.DefaultLimits(), []string{"backend"})
	w.WriteSummary(Summary{
		Meta:           meta,
		FilesFound:     3,
		FilesProcessed: 2,
		FilesSkipped:   1,
		BytesAccepted:  128,
		Skips:          []types.SkipRecord{{RelativePath: "a.bin", Reason: "binary content"}},
		SecretCounts:   map[string]int{"AWS Access Key": 1},
		Duration:       time.Second,
	})
	require.NoError(t, w.Close())

	entries := readEntries(t, path)
	require.NotEmpty(t, entries)

	// Every entry carries a timestamp and a message.
	for _, e := range entries {
		assert.Contains(t, e, "ts")
		assert.Contains(t, e, "msg")
	}

	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, e["msg"].(string))
	}
	assert.Contains(t, msgs, "run configuration")
	assert.Contains(t, msgs, "file skipped")
	assert.Contains(t, msgs, "secret category redacted")
	assert.Contains(t, msgs, "run summary")
}

func TestWriter_AuditCapWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log.jsonl")
	w, err := New(path)
	require.NoError(t, err)

	w.WriteSummary(Summary{
		SymlinkAudit: []types.SymlinkAuditEntry{
			{SymlinkPath: "/src/link.py", TargetPath: "/src/real.py", TargetKind: "file", Timestamp: time.Now()},
		},
		AuditCapReached: true,
	})
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "symlink audited")
	assert.Contains(t, string(data), "audit cap reached")
}

func TestNew_UnwritablePath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "run.log.jsonl"))
	require.Error(t, err)
}
