package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGroupsTable(t *testing.T) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	groupsFormat = "table"
	err := runGroups(cmd, []string{})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Group")
	assert.Contains(t, output, "backend")
	assert.Contains(t, output, ".go")
}

func TestRunGroupsJSON(t *testing.T) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	groupsFormat = "json"
	err := runGroups(cmd, []string{})
	require.NoError(t, err)

	var groups []struct {
		Name       string   `json:"name"`
		Extensions []string `json:"extensions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &groups))
	assert.NotEmpty(t, groups)
}

func TestRunGroupsUnknownFormat(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	groupsFormat = "yaml"
	err := runGroups(cmd, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
