package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, configPath, args...)
	require.NoError(t, err, "taskcanvas %s", strings.Join(args, " "))
	return strings.TrimSpace(out)
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "config.yaml")
	mustRun(t, path, "init")
	return path
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := initWorkspace(t)

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "locks"))
	require.NoError(t, err)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), cfg.DataDir)
	assert.Equal(t, "local", cfg.UserID)

	out := mustRun(t, path, "init")
	assert.Contains(t, out, "initialized")
}

func TestProjectLifecycleAcrossInvocations(t *testing.T) {
	path := initWorkspace(t)

	projectID := mustRun(t, path, "project", "add", "Launch", "--x", "100", "--y", "50")
	require.NotEmpty(t, projectID)
	rootID := mustRun(t, path, "task", "add", "alpha", "--project", projectID, "--x", "100", "--y", "200")
	childID := mustRun(t, path, "task", "add", "beta", "--parent", rootID)

	out := mustRun(t, path, "project", "list")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "2 tasks")

	out = mustRun(t, path, "task", "list", "--children", rootID)
	assert.Contains(t, out, childID)

	out = mustRun(t, path, "priority", "list")
	assert.Equal(t, []string{"1\t" + rootID + "\talpha", "2\t" + childID + "\tbeta"}, strings.Split(out, "\n"))

	mustRun(t, path, "priority", "move", childID, "1")
	out = mustRun(t, path, "priority", "list")
	assert.True(t, strings.HasPrefix(out, "1\t"+childID), out)

	mustRun(t, path, "project", "finish", projectID)
	out = mustRun(t, path, "priority", "list")
	assert.Empty(t, out)
	out = mustRun(t, path, "project", "list")
	assert.Contains(t, out, "Completed")

	mustRun(t, path, "project", "reactivate", projectID)
	out = mustRun(t, path, "priority", "list")
	assert.Equal(t, []string{"1\t" + childID + "\tbeta", "2\t" + rootID + "\talpha"}, strings.Split(out, "\n"))

	mustRun(t, path, "task", "done", childID)
	out = mustRun(t, path, "priority", "list")
	assert.NotContains(t, out, childID)

	mustRun(t, path, "project", "delete", projectID)
	assert.Empty(t, mustRun(t, path, "project", "list"))
	assert.Empty(t, mustRun(t, path, "task", "list"))
}

func TestMoveAndArrange(t *testing.T) {
	path := initWorkspace(t)

	projectID := mustRun(t, path, "project", "add", "Site", "--x", "0", "--y", "0")
	rootID := mustRun(t, path, "task", "add", "root", "--project", projectID, "--x", "10", "--y", "10")

	mustRun(t, path, "project", "move", projectID, "--dx", "5", "--dy", "-5")
	out := mustRun(t, path, "project", "list")
	assert.Contains(t, out, "(5,-5)")

	mustRun(t, path, "task", "move", rootID, "--dx", "1")
	mustRun(t, path, "project", "arrange", projectID)
	out = mustRun(t, path, "task", "list", "--project", projectID)
	assert.Contains(t, out, rootID)
}

func TestTaskLinkingErrors(t *testing.T) {
	path := initWorkspace(t)

	_, err := runCLI(t, path, "task", "add", "orphan", "--parent", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	a := mustRun(t, path, "task", "add", "a")
	b := mustRun(t, path, "task", "add", "b", "--parent", a)

	_, err = runCLI(t, path, "task", "link", a, "--parent", b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	_, err = runCLI(t, path, "task", "link", a)
	require.Error(t, err)

	mustRun(t, path, "task", "unlink", b)
	out := mustRun(t, path, "task", "list")
	assert.NotContains(t, out, "parent:"+a)
}

func TestTaskRangeAndUpdate(t *testing.T) {
	path := initWorkspace(t)

	id := mustRun(t, path, "task", "add", "sprint", "--start", "2026-03-02", "--end", "2026-03-06")
	mustRun(t, path, "task", "add", "later", "--start", "2026-04-01")

	out := mustRun(t, path, "task", "list", "--from", "2026-03-04", "--to", "2026-03-05")
	assert.Contains(t, out, id)
	assert.NotContains(t, out, "later")

	out = mustRun(t, path, "task", "update", id, "--title", "sprint 1", "--end", "")
	assert.Contains(t, out, "sprint 1")
	assert.Contains(t, out, "2026-03-02..")

	_, err := runCLI(t, path, "task", "update", id, "--start", "03/02/2026")
	require.Error(t, err)

	out = mustRun(t, path, "task", "style", id, "--color", "#ff0000", "--width", "3")
	assert.Contains(t, out, id)
}

func TestMemoCommands(t *testing.T) {
	path := initWorkspace(t)

	id := mustRun(t, path, "memo", "add", "remember", "the", "milk", "--x", "3", "--y", "4")
	out := mustRun(t, path, "memo", "list")
	assert.Contains(t, out, "remember the milk")
	assert.Contains(t, out, "#fff59d")

	mustRun(t, path, "memo", "update", id, "--text", "buy bread", "--color", "#90caf9")
	out = mustRun(t, path, "memo", "list")
	assert.Contains(t, out, "buy bread")
	assert.Contains(t, out, "(3,4)")

	mustRun(t, path, "memo", "delete", id)
	assert.Empty(t, mustRun(t, path, "memo", "list"))
}

func TestAttachmentUpload(t *testing.T) {
	path := initWorkspace(t)
	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	id := mustRun(t, path, "task", "add", "with file")
	url := mustRun(t, path, "task", "attach", id, file)
	assert.Contains(t, url, "/o/")
	assert.Contains(t, url, "notes.txt")
}

func TestReportPromptOnly(t *testing.T) {
	path := initWorkspace(t)

	projectID := mustRun(t, path, "project", "add", "Launch")
	mustRun(t, path, "task", "add", "write docs", "--project", projectID, "--start", "2026-03-03")

	out := mustRun(t, path, "report", "--period", "week", "--date", "2026-03-04", "--prompt-only")
	assert.Contains(t, out, "Period: 2026-03-02")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "write docs")

	_, err := runCLI(t, path, "report", "--period", "year")
	require.Error(t, err)
}
