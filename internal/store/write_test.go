package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun(id, scenario string, pass bool) Run {
	return Run{
		ID:            id,
		Scenario:      scenario,
		SpecHash:      "spec-hash",
		Pass:          pass,
		StartedSeq:    1,
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", "reset_and_free", false)
	run.Errors = []string{"step 2: display mismatch", "final_empty failed"}
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestWriteRun_NilErrorsReadBackEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1", "a", true)))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.NotNil(t, got.Errors)
	assert.Empty(t, got.Errors)
	assert.True(t, got.Pass)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1", "first", true)))
	require.NoError(t, s.WriteRun(ctx, testRun("run-1", "second", false)))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Scenario, "duplicate ID must not overwrite")
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestWriteStep_RequiresRun(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteStep(context.Background(), Step{RunID: "missing", Seq: 1, Op: "up"})
	assert.Error(t, err)
}

func TestReadSteps_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1", "a", true)))
	for _, seq := range []int64{3, 1, 2} {
		require.NoError(t, s.WriteStep(ctx, Step{
			RunID:    "run-1",
			Seq:      seq,
			Op:       "up",
			Display:  "true",
			ZoneHash: "h",
		}))
	}

	steps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for i, step := range steps {
		assert.Equal(t, int64(i+1), step.Seq)
		assert.Equal(t, "{}", step.Args, "empty args are stored as {}")
	}
}

func TestReadSteps_UnknownRunIsEmpty(t *testing.T) {
	s := createTestStore(t)

	steps, err := s.ReadSteps(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}

func TestWriteRunWithSteps(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", "door", true)
	steps := []Step{
		{Seq: 1, Op: "constrain", Args: `{"constraints":["x <= 3"]}`, Display: "(x<=3)", ZoneHash: "h1"},
		{Seq: 2, Op: "up", Args: "{}", Display: "true", ZoneHash: "h2"},
		{Seq: 3, Op: "constrain", Args: `{"constraints":["x < 0"]}`, Display: "false", Empty: true, ZoneHash: "h3"},
	}
	require.NoError(t, s.WriteRunWithSteps(ctx, run, steps))

	got, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "run-1", got[0].RunID, "RunID is filled from the run")
	assert.Equal(t, `{"constraints":["x <= 3"]}`, got[0].Args)
	assert.True(t, got[2].Empty)
	assert.Equal(t, "false", got[2].Display)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("b", "door", true)))
	require.NoError(t, s.WriteRun(ctx, testRun("a", "window", false)))
	require.NoError(t, s.WriteRun(ctx, testRun("c", "door", false)))

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	doors, err := s.ListRuns(ctx, "door")
	require.NoError(t, err)
	require.Len(t, doors, 2)
	assert.Equal(t, "b", doors[0].ID)
	assert.Equal(t, "c", doors[1].ID)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestUUIDv7Generator(t *testing.T) {
	var gen RunIDGenerator = UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble should be 7")
}
