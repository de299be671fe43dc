package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/zones/internal/store"
)

// seedStore records one passing and one failing run.
func seedStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.WriteRunWithSteps(ctx,
		store.Run{ID: "run-1", Scenario: "reset_and_free", SpecHash: "h", Pass: true, StartedSeq: 1},
		[]store.Step{
			{Seq: 1, Op: "start", Args: `{"zone":"zero"}`, Display: "(x==0)", ZoneHash: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
			{Seq: 2, Op: "up", Args: "{}", Display: "true", ZoneHash: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
			{Seq: 3, Op: "constrain", Args: `{"constraints":["x < 2","x > 3"]}`, Display: "false", Empty: true, ZoneHash: "cccccccccccccccccccccccccccccccc"},
			{Seq: 4, Op: "up", Args: "{}", Display: "false", Empty: true, ZoneHash: "cccccccccccccccccccccccccccccccc"},
		}))
	require.NoError(t, st.WriteRun(ctx, store.Run{
		ID: "run-2", Scenario: "other", SpecHash: "h", Pass: false, StartedSeq: 1,
		Errors: []string{"Assertion failed: final_empty\n  Expected: empty=true\n"},
	}))
	return path
}

func executeTrace(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, err := executeTrace(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}

func TestTraceListRuns(t *testing.T) {
	db := seedStore(t)

	output, err := executeTrace(t, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, output, "run-1  PASS   reset_and_free")
	assert.Contains(t, output, "run-2  FAIL   other")

	output, err = executeTrace(t, "json", "--db", db, "--scenario", "other")
	require.NoError(t, err)
	var resp struct {
		Data RunList `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, "run-2", resp.Data.Runs[0].ID)
}

func TestTraceListRunsEmpty(t *testing.T) {
	output, err := executeTrace(t, "text", "--db", filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	assert.Contains(t, output, "No runs recorded.")
}

func TestTraceRun(t *testing.T) {
	db := seedStore(t)

	output, err := executeTrace(t, "text", "--db", db, "--run", "run-1")
	require.NoError(t, err)
	assert.Contains(t, output, "Run: run-1")
	assert.Contains(t, output, "Status: PASS")
	assert.Contains(t, output, "  [1] start {zone=zero} -> (x==0)")
	assert.Contains(t, output, "  [2] up -> true")
	assert.Contains(t, output, "  [3] constrain {constraints=[x < 2, x > 3]} -> false")
	assert.Contains(t, output, "  Steps:          4")
	assert.Contains(t, output, "  Distinct zones: 3")
	assert.Contains(t, output, "  Empty steps:    2")
	assert.NotContains(t, output, "hash:")
}

func TestTraceRunVerbose(t *testing.T) {
	db := seedStore(t)

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "--run", "run-1"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "hash: aaaaaaaa...aaaaaaaa")
}

func TestTraceRunErrors(t *testing.T) {
	db := seedStore(t)

	output, err := executeTrace(t, "text", "--db", db, "--run", "run-2")
	require.NoError(t, err)
	assert.Contains(t, output, "Status: FAIL")
	assert.Contains(t, output, "(no steps)")
	assert.Contains(t, output, "=== Errors ===")
	assert.Contains(t, output, "    Expected: empty=true")
}

func TestTraceRunJSON(t *testing.T) {
	db := seedStore(t)

	output, err := executeTrace(t, "json", "--db", db, "--run", "run-1")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "reset_and_free", resp.Data.Run.Scenario)
	require.Len(t, resp.Data.Timeline, 4)
	assert.Equal(t, map[string]any{"zone": "zero"}, resp.Data.Timeline[0].Args)
	assert.Nil(t, resp.Data.Timeline[1].Args)
	assert.Equal(t, TraceStats{Steps: 4, DistinctZones: 3, EmptySteps: 2}, resp.Data.Stats)
}

func TestTraceUnknownRun(t *testing.T) {
	db := seedStore(t)

	output, err := executeTrace(t, "text", "--db", db, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrRunNotFound)
	assert.Contains(t, output, "run not found: nope")
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "", formatArgs(nil))
	assert.Equal(t, " {clock=x, value=5}", formatArgs(map[string]any{"value": float64(5), "clock": "x"}))
	assert.Equal(t, " {constraints=[x < 1, y > 2]}", formatArgs(map[string]any{"constraints": []any{"x < 1", "y > 2"}}))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}
