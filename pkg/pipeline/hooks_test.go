package pipeline

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptpack/promptpack/pkg/discover"
	"github.com/promptpack/promptpack/pkg/types"
)

// vetoHook drops any record whose path contains a marker.
type vetoHook struct{ marker string }

func (h *vetoHook) Name() string { return "veto" }
func (h *vetoHook) BeforeFile(record *types.FileRecord) (*types.FileRecord, error) {
	if strings.Contains(record.RelativePath, h.marker) {
		return nil, nil
	}
	return record, nil
}

// panicHook panics at every seam it implements.
type panicHook struct{}

func (h *panicHook) Name() string { return "panicky" }
func (h *panicHook) BeforeFile(record *types.FileRecord) (*types.FileRecord, error) {
	panic("boom")
}
func (h *panicHook) BeforeRun(meta types.RunMetadata, candidates []types.CandidateFile) ([]types.CandidateFile, error) {
	panic("boom")
}
func (h *panicHook) AfterFile(record *types.FileRecord, rendered string) (string, error) {
	panic("boom")
}

// bannerHook prepends a banner to rendered content.
type bannerHook struct{}

func (h *bannerHook) Name() string { return "banner" }
func (h *bannerHook) AfterFile(record *types.FileRecord, rendered string) (string, error) {
	return "// via hook\n" + rendered, nil
}

// groupHook contributes a new extension group.
type groupHook struct{}

func (h *groupHook) Name() string { return "groups" }
func (h *groupHook) RegisterExtensions() []*discover.ExtensionGroup {
	return []*discover.ExtensionGroup{{Name: "notebooks", Extensions: []string{".ipynb"}}}
}

func TestHooks_VetoSkipsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.py", "print(1)\n")
	writeFile(t, root, "drop_this.py", "print(2)\n")

	cfg := baseConfig(t, root)
	cfg.Hooks = []Hook{&vetoHook{marker: "drop"}}
	result := run(t, cfg)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesSkipped)

	logData, err := os.ReadFile(result.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "vetoed by hook veto")
}

func TestHooks_PanicDoesNotCrashRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "print(1)\n")

	cfg := baseConfig(t, root)
	cfg.Hooks = []Hook{&panicHook{}}
	result := run(t, cfg)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.FilesProcessed)
}

func TestHooks_RenderFilterChained(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "print(1)\n")

	cfg := baseConfig(t, root)
	cfg.Formats = []string{"text"}
	cfg.Hooks = []Hook{&bannerHook{}}
	result := run(t, cfg)

	require.True(t, result.Success)
	data, err := os.ReadFile(result.Artifacts[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "// via hook\nprint(1)")
}

func TestHooks_RegisteredExtensionGroup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "analysis.ipynb", "{\"cells\": []}\n")

	cfg := baseConfig(t, root)
	cfg.Groups = []string{"notebooks"}
	cfg.Hooks = []Hook{&groupHook{}}
	result := run(t, cfg)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.FilesProcessed)
}

func TestHookRunner_BeforeRunPanicKeepsCandidates(t *testing.T) {
	runner := newHookRunner([]Hook{&panicHook{}}, nil)
	candidates := []types.CandidateFile{{RelativePath: "a.py"}}

	out := runner.beforeRun(types.RunMetadata{}, candidates)
	assert.Equal(t, candidates, out)
}

func TestHookRunner_NoRenderHooksMeansNilFilter(t *testing.T) {
	runner := newHookRunner([]Hook{&vetoHook{}}, nil)
	assert.Nil(t, runner.renderFilter())
}
