package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyforge/storyforge/internal/adapters/inbound/cli"
)

// newProject creates a minimal on-disk project fixture.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	artifacts := filepath.Join(root, "docs", "sprint-artifacts")
	require.NoError(t, os.MkdirAll(artifacts, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(artifacts, "sprint-status.yaml"), []byte(`development_status:
  1-1-setup: done
  1-2-login: in-progress
  2-1-checkout: backlog
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "epics.md"), []byte("# Epics\n\n## Epic 1\n"), 0644))

	return root
}

// runCommand executes the root command with args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "storyforge")
}

func TestStatusCommand_JSON(t *testing.T) {
	root := newProject(t)

	out, err := runCommand(t, "status", "--path", root, "--json")
	require.NoError(t, err)

	assert.Contains(t, out, `"done": 1`)
	assert.Contains(t, out, `"in-progress": 1`)
	assert.Contains(t, out, `"backlog": 1`)
}

func TestStatusCommand_MissingProject(t *testing.T) {
	_, err := runCommand(t, "status", "--path", t.TempDir())
	assert.Error(t, err)
}

func TestUpdateCommand(t *testing.T) {
	root := newProject(t)

	out, err := runCommand(t, "update", "1-2-login", "review", "--path", root)
	require.NoError(t, err)
	assert.Contains(t, out, "1-2-login")

	data, err := os.ReadFile(filepath.Join(root, "docs", "sprint-artifacts", "sprint-status.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "1-2-login: review")
}

func TestUpdateCommand_InvalidStatus(t *testing.T) {
	root := newProject(t)

	_, err := runCommand(t, "update", "1-2-login", "shipped", "--path", root)
	assert.Error(t, err)
}

func TestNextCommand(t *testing.T) {
	root := newProject(t)

	out, err := runCommand(t, "next", "--path", root)
	require.NoError(t, err)
	assert.Contains(t, out, "2-1-checkout")
	assert.Contains(t, out, "1-2-login")
}

func TestEpicCommand(t *testing.T) {
	root := newProject(t)

	out, err := runCommand(t, "epic", "1", "--path", root)
	require.NoError(t, err)
	assert.Contains(t, out, `"epic": 1`)
	assert.Contains(t, out, "1-2-login")
	assert.NotContains(t, out, "2-1-checkout")
}

func TestEpicCommand_NotANumber(t *testing.T) {
	root := newProject(t)

	_, err := runCommand(t, "epic", "one", "--path", root)
	assert.Error(t, err)
}

func TestFixCommand_RequiresReview(t *testing.T) {
	root := newProject(t)

	_, err := runCommand(t, "fix", "1-2-login", "--path", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no review found")
}

func TestHistoryCommand_Empty(t *testing.T) {
	root := newProject(t)

	out, err := runCommand(t, "history", "--path", root)
	require.NoError(t, err)
	assert.Contains(t, out, "no auto-fix runs recorded")
}

func TestCleanupCommand(t *testing.T) {
	root := newProject(t)

	out, err := runCommand(t, "cleanup", "--path", root)
	require.NoError(t, err)
	assert.Contains(t, out, "backup cleanup complete")
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCommand(t, "definitely-not-a-command")
	assert.Error(t, err)
}
