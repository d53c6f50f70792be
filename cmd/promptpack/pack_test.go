package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetPackFlags restores the pack flag variables to their defaults so tests
// do not leak state into each other.
func resetPackFlags(t *testing.T) {
	t.Helper()
	packGroups = nil
	packFormats = []string{"text"}
	packOutputDir = t.TempDir()
	packBaseName = "digest"
	packIgnore = nil
	packNoGitignore = false
	packNoRecursive = false
	packMaxFileSize = 1024
	packMaxFiles = 5000
	packMaxTotalSize = 100
	packMaxBase64 = 64
	packMaxLineLen = 5000
	packMaxTokenLen = 2000
	packAuditEntries = 100
	packAllowSymlinks = false
	packKeepSecrets = false
	packSecretsInclude = ""
	packSecretsExclude = ""
	quiet = false
	verbose = false
	colorMode = "never"
}

func newPackTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetContext(context.Background())
	return cmd, &out, &errOut
}

func TestRunPack_WritesArtifacts(t *testing.T) {
	resetPackFlags(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("print('hi')\n"), 0644))

	cmd, out, _ := newPackTestCmd()
	packGroups = []string{"backend"}

	err := runPack(cmd, []string{root})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Digest complete:")
	assert.FileExists(t, filepath.Join(packOutputDir, "digest.txt"))
	assert.FileExists(t, filepath.Join(packOutputDir, "digest.log.jsonl"))
}

func TestRunPack_FailureReportedOnStderr(t *testing.T) {
	resetPackFlags(t)
	root := t.TempDir()
	for _, name := range []string{"a.py", "b.py"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("print(1)\n"), 0644))
	}

	cmd, _, errOut := newPackTestCmd()
	packGroups = []string{"backend"}
	packMaxFiles = 1

	err := runPack(cmd, []string{root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOO_MANY_FILES")
	assert.Contains(t, errOut.String(), "Run failed:")
}

func TestRunPack_QuietSuppressesSummary(t *testing.T) {
	resetPackFlags(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("print('hi')\n"), 0644))

	cmd, out, _ := newPackTestCmd()
	packGroups = []string{"backend"}
	quiet = true

	err := runPack(cmd, []string{root})
	require.NoError(t, err)
	assert.Empty(t, out.String())
}
