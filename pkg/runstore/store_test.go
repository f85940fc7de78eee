package runstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/maestro/pkg/conversation"
	"github.com/harun/maestro/pkg/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DBPath: filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOutcome(runID string) *graph.Outcome {
	answer := "wrote hi to x.txt"
	return &graph.Outcome{
		RunID:         runID,
		FinalAnswer:   &answer,
		IsVerified:    true,
		PlanIteration: 1,
		Steps:         4,
		Turns: []conversation.Turn{
			conversation.Human("Task: write hi to x.txt"),
			conversation.Assistant("Plan created:\n\n1. write the file"),
			{Role: conversation.RoleTool, Content: "Wrote 2 bytes to x.txt", ToolID: "write_to_file", InvocationID: "i1", Success: true},
		},
	}
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, "write hi to x.txt", sampleOutcome("run-1")))

	summary, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "write hi to x.txt", summary.Task)
	assert.True(t, summary.IsVerified)
	assert.Equal(t, 1, summary.PlanIteration)
	assert.Equal(t, 4, summary.Steps)
	require.NotNil(t, summary.FinalAnswer)
	assert.Equal(t, "wrote hi to x.txt", *summary.FinalAnswer)
	assert.NotZero(t, summary.CreatedAt)
}

func TestStore_SaveNilFinalAnswer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outcome := sampleOutcome("run-1")
	outcome.FinalAnswer = nil
	outcome.IsVerified = false
	require.NoError(t, s.SaveRun(ctx, "task", outcome))

	summary, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Nil(t, summary.FinalAnswer)
	assert.False(t, summary.IsVerified)
}

func TestStore_GetTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outcome := sampleOutcome("run-1")
	require.NoError(t, s.SaveRun(ctx, "task", outcome))

	turns, err := s.GetTurns(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, turns, 3)

	assert.Equal(t, conversation.RoleHuman, turns[0].Role)
	assert.Equal(t, "Task: write hi to x.txt", turns[0].Content)
	assert.Equal(t, conversation.RoleTool, turns[2].Role)
	assert.Equal(t, "write_to_file", turns[2].ToolID)
	assert.Equal(t, "i1", turns[2].InvocationID)
	assert.True(t, turns[2].Success)
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, "task", sampleOutcome("run-1")))

	updated := sampleOutcome("run-1")
	updated.Steps = 9
	updated.Turns = updated.Turns[:1]
	require.NoError(t, s.SaveRun(ctx, "task", updated))

	summary, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Steps)

	turns, err := s.GetTurns(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveRun(ctx, fmt.Sprintf("task %d", i), sampleOutcome(fmt.Sprintf("run-%d", i))))
	}

	summaries, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, summaries, 3)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_DeleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, "task", sampleOutcome("run-1")))
	require.NoError(t, s.DeleteRun(ctx, "run-1"))

	_, err := s.GetRun(ctx, "run-1")
	assert.ErrorIs(t, err, ErrRunNotFound)

	turns, err := s.GetTurns(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	assert.ErrorIs(t, s.DeleteRun(ctx, "run-1"), ErrRunNotFound)
}
