package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/maestro/pkg/tool"
)

func TestState_Apply(t *testing.T) {
	s := NewState("build a thing", 1000)
	assert.Equal(t, "build a thing", s.Task)
	assert.Equal(t, 0, s.PlanIteration)
	assert.Nil(t, s.FinalAnswer)

	s.Apply(Update{
		Turns:         []Turn{Human("Task: build a thing")},
		Plan:          StringPtr("1. do it"),
		PlanIteration: IntPtr(1),
	})
	assert.Len(t, s.Turns, 1)
	assert.Equal(t, "1. do it", s.Plan)
	assert.Equal(t, 1, s.PlanIteration)

	// Unset fields leave prior values alone.
	s.Apply(Update{Turns: []Turn{Assistant("working on it")}})
	assert.Len(t, s.Turns, 2)
	assert.Equal(t, "1. do it", s.Plan)
	assert.Equal(t, 1, s.PlanIteration)
}

func TestState_ApplyFinalAnswer(t *testing.T) {
	s := NewState("task", 0)

	s.Apply(Update{FinalAnswer: StringPtr("answer"), IsVerified: BoolPtr(true)})
	require.NotNil(t, s.FinalAnswer)
	assert.Equal(t, "answer", *s.FinalAnswer)
	assert.True(t, s.IsVerified)

	s.Apply(Update{ClearFinalAnswer: true, IsVerified: BoolPtr(false)})
	assert.Nil(t, s.FinalAnswer)
	assert.False(t, s.IsVerified)
}

func TestState_ApplyAppendsInOrder(t *testing.T) {
	s := NewState("task", 0)
	s.Apply(Update{Turns: []Turn{Human("a"), Assistant("b")}})
	s.Apply(Update{Turns: []Turn{Assistant("c")}})

	contents := make([]string, len(s.Turns))
	for i, turn := range s.Turns {
		contents[i] = turn.Content
	}
	assert.Equal(t, []string{"a", "b", "c"}, contents)
}

func TestState_LastTurn(t *testing.T) {
	s := NewState("task", 0)

	_, ok := s.LastTurn()
	assert.False(t, ok)

	s.Apply(Update{Turns: []Turn{Human("first"), Assistant("second")}})
	last, ok := s.LastTurn()
	require.True(t, ok)
	assert.Equal(t, "second", last.Content)
}

func TestState_LatestCompletion(t *testing.T) {
	s := NewState("task", 0)

	_, ok := s.LatestCompletion()
	assert.False(t, ok)

	inv := tool.NewInvocation(tool.CompletionToolID, map[string]string{"result": "done"})
	s.Apply(Update{Turns: []Turn{
		Assistant("calling completion"),
		ToolResultTurn(inv, tool.CompletionResult("first answer")),
		Assistant("revisiting"),
		ToolResultTurn(inv, tool.CompletionResult("second answer")),
	}})

	answer, ok := s.LatestCompletion()
	require.True(t, ok)
	assert.Equal(t, "second answer", answer)
}

func TestTurn_IsCompletionSignal(t *testing.T) {
	inv := tool.NewInvocation(tool.CompletionToolID, nil)

	t.Run("completion result", func(t *testing.T) {
		turn := ToolResultTurn(inv, tool.CompletionResult("done"))
		assert.True(t, turn.IsCompletionSignal())
		assert.Equal(t, "done", turn.CompletionAnswer())
	})

	t.Run("failed completion tool", func(t *testing.T) {
		turn := ToolResultTurn(inv, tool.Errf("broke"))
		assert.False(t, turn.IsCompletionSignal())
	})

	t.Run("other tool", func(t *testing.T) {
		other := tool.NewInvocation("read_file", nil)
		turn := ToolResultTurn(other, tool.OK("contents"))
		assert.False(t, turn.IsCompletionSignal())
	})

	t.Run("assistant turn", func(t *testing.T) {
		assert.False(t, Assistant("[TASK_COMPLETE]\nnope").IsCompletionSignal())
	})
}

func TestTurn_HasInvocations(t *testing.T) {
	inv := tool.NewInvocation("read_file", map[string]string{"path": "a.go"})
	assert.True(t, AssistantWithCalls("", []tool.Invocation{inv}).HasInvocations())
	assert.False(t, Assistant("no calls").HasInvocations())
	assert.False(t, Human("hello").HasInvocations())
}
