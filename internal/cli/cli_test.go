package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_TextOutput(t *testing.T) {
	out, err := execute(t, "run", "testdata/add.cue")
	require.NoError(t, err)
	assert.Equal(t, "S(S(S(Zero)))\n", out)
}

func TestRun_JSONEnvelope(t *testing.T) {
	out, err := execute(t, "run", "testdata/add.cue", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Main", resp.Data.Net)
	assert.Equal(t, 3, resp.Data.Reductions)
	assert.NotEmpty(t, resp.Data.RunToken)
	assert.Equal(t, []string{"S(S(S(Zero)))"}, resp.Data.Interface)
}

func TestRun_Timing(t *testing.T) {
	out, err := execute(t, "run", "testdata/add.cue", "--timing")
	require.NoError(t, err)
	assert.Contains(t, out, "S(S(S(Zero)))\n")
	assert.Contains(t, out, "3 reductions in ")
}

func TestRun_MissingNet(t *testing.T) {
	_, err := execute(t, "run", "testdata/add.cue", "--net", "Square")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to build net Square")
}

func TestRun_ModuleNotFound(t *testing.T) {
	_, err := execute(t, "run", "testdata/missing.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_MalformedModule(t *testing.T) {
	_, err := execute(t, "run", "testdata/broken.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load module")
}

func TestRun_InvalidFormat(t *testing.T) {
	_, err := execute(t, "run", "testdata/add.cue", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRun_BudgetFlag(t *testing.T) {
	_, err := execute(t, "run", "testdata/add.cue", "--budget", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "budget exceeded")
}

func TestRun_OptionsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "opts.yaml", "budget: 1\n")

	_, err := execute(t, "run", "testdata/add.cue", "--options", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "budget exceeded")
}

func TestRun_FlagOverridesOptionsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "opts.yaml", "budget: 1\n")

	out, err := execute(t, "run", "testdata/add.cue", "--options", path, "--budget", "100")
	require.NoError(t, err)
	assert.Equal(t, "S(S(S(Zero)))\n", out)
}

func TestCheck_OK(t *testing.T) {
	out, err := execute(t, "check", "testdata/add.cue")
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 rules, 1 nets\n", out)
}

func TestCheck_ReportsEveryError(t *testing.T) {
	out, err := execute(t, "check", "testdata/bad.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 compile errors")
	assert.Equal(t, 2, strings.Count(out, "error: "))
}

func TestCheck_JSONIncludesErrors(t *testing.T) {
	out, err := execute(t, "check", "testdata/bad.cue", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Rules)
	assert.Len(t, resp.Data.Errors, 2)
}

func TestTrace_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(dir, "runs.db")

	out, err := execute(t, "run", "testdata/add.cue", "--journal", journal)
	require.NoError(t, err)
	assert.Equal(t, "S(S(S(Zero)))\n", out)

	out, err = execute(t, "trace", "--journal", journal)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], "  3 firings"), "got %q", lines[0])

	out, err = execute(t, "trace", "--journal", journal, "--run", "latest")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "3 firings")
	for _, line := range lines[1:] {
		assert.Contains(t, line, " >< ")
	}
}

func TestTrace_JournalNotFound(t *testing.T) {
	_, err := execute(t, "trace", "--journal", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}

func TestTrace_EmptyJournal(t *testing.T) {
	dir := t.TempDir()
	journal := writeFile(t, dir, "empty.db", "")

	// An empty file is a valid (schema-less) SQLite database; opening it
	// applies the schema, so the listing succeeds with no runs.
	out, err := execute(t, "trace", "--journal", journal)
	require.NoError(t, err)
	assert.Equal(t, "no recorded runs\n", out)
}
