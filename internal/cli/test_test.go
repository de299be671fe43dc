package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/zones/internal/store"
	"github.com/roach88/zones/internal/testutil"
)

var testScenariosDir = filepath.Join("..", "..", "testdata", "scenarios")

func executeTest(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// copyScenario copies a scenario file from testdata into dir.
func copyScenario(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testScenariosDir, name+".yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0o644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeTest(t, "text", testSpecsDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestTestCommandNonExistentDirs(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := executeTest(t, "text", missing, testScenariosDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "specs directory not found")

	_, err = executeTest(t, "text", testSpecsDir, missing)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	output, err := executeTest(t, "text", testSpecsDir, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found.")

	output, err = executeTest(t, "json", testSpecsDir, t.TempDir())
	require.NoError(t, err)
	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	output, err := executeTest(t, "text", testSpecsDir, testScenariosDir)
	require.NoError(t, err, output)

	assert.Contains(t, output, "✓ reset_and_free")
	assert.Contains(t, output, "✓ door_elapse")
	assert.Contains(t, output, "✓ contradiction")
	assert.Contains(t, output, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTestCommandJSON(t *testing.T) {
	output, err := executeTest(t, "json", testSpecsDir, testScenariosDir, "--filter", "door*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "door_elapse", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.Equal(t, 4, resp.Data.Scenarios[0].Visited)
	assert.Len(t, resp.Data.Scenarios[0].TraceHash, 64)
}

func TestTestCommandUpdateWritesGolden(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "reset_and_free")

	output, err := executeTest(t, "text", testSpecsDir, dir, "--update")
	require.NoError(t, err, output)

	got, err := os.ReadFile(filepath.Join(dir, "golden", "reset_and_free.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(testScenariosDir, "golden", "reset_and_free.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(bytes.TrimSpace(want)), string(got))

	// A second run compares against the file just written.
	_, err = executeTest(t, "text", testSpecsDir, dir)
	require.NoError(t, err)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "contradiction")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "contradiction.golden"), []byte(`{"scenario_name":"contradiction","trace":[]}`), 0o644))

	output, err := executeTest(t, "text", testSpecsDir, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ contradiction")
	assert.Contains(t, output, "does not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(`
name: wrong
description: "expects the wrong display"
clocks: [x]
steps:
  - op: constrain
    constraints: ["x < 2"]
    expect:
      display: "(x<3)"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0o644))

	output, err := executeTest(t, "json", testSpecsDir, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Error  CLIError   `json:"error"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Failed)

	byName := map[string]ScenarioResult{}
	for _, s := range resp.Data.Scenarios {
		byName[s.Name] = s
	}
	assert.Contains(t, byName["broken.yaml"].Errors[0], "failed to load scenario")
	assert.Equal(t, []string{`step 0 (constrain): expected display "(x<3)", got "(x<2)"`}, byName["wrong"].Errors)
}

func TestTestCommandRecordsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	opts := &TestOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    dbPath,
		Filter:      "reset_and_free",
		RunIDs:      testutil.NewFixedRunIDGenerator("run-a"),
	}
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, runTests(opts, testSpecsDir, testScenariosDir, cmd))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-a", runs[0].ID)
	assert.Equal(t, "reset_and_free", runs[0].Scenario)

	steps, err := st.ReadSteps(context.Background(), "run-a")
	require.NoError(t, err)
	assert.Len(t, steps, 5)
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles(testScenariosDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(testScenariosDir, "reset_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(testScenariosDir, "reset_and_free.yaml")}, files)

	_, err = findScenarioFiles(testScenariosDir, "[")
	require.Error(t, err)
}

func TestFindScenarioFilesSkipsGolden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"a.yaml", "nested/b.yml", "golden/c.yaml", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "nested", "b.yml"),
	}, files)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "door.golden"),
		goldenFilePath(filepath.Join("scenarios", "door.yaml")))
}
