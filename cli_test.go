package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with no env or config file.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", "", "--config", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCommandPutGetDelete(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COMMANDS_DB", filepath.Join(dir, "commands.db"))
	t.Setenv("LOG_LEVEL", "error")

	def := filepath.Join(dir, "cura.yaml")
	require.NoError(t, os.WriteFile(def, []byte("description: \"{{ user.mention }} se cura\"\ncooldown: 10\n"), 0o644))

	out, err := runCLI(t, "command", "put", "Cura", def)
	require.NoError(t, err)
	assert.Contains(t, out, "saved cura")

	out, err = runCLI(t, "command", "get", "cura")
	require.NoError(t, err)
	assert.Contains(t, out, `"cooldown": 10`)

	out, err = runCLI(t, "command", "delete", "cura")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted cura")

	_, err = runCLI(t, "command", "get", "cura")
	assert.Error(t, err)
	_, err = runCLI(t, "command", "delete", "cura")
	assert.Error(t, err)
}

func TestCommandPutRejectsInvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COMMANDS_DB", filepath.Join(dir, "commands.db"))
	t.Setenv("LOG_LEVEL", "error")

	def := filepath.Join(dir, "ruim.json")
	require.NoError(t, os.WriteFile(def, []byte(`{"actions":[{"type":"explode"}]}`), 0o644))

	_, err := runCLI(t, "command", "put", "ruim", def)
	assert.ErrorContains(t, err, "unknown action type")
}

func TestCommandRequiresDatabase(t *testing.T) {
	t.Setenv("COMMANDS_DB", "")
	_, err := runCLI(t, "command", "get", "x")
	assert.ErrorContains(t, err, "COMMANDS_DB")
}
