package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/maestro/pkg/conversation"
	"github.com/harun/maestro/pkg/prompt"
	"github.com/harun/maestro/pkg/provider"
	"github.com/harun/maestro/pkg/tool"
)

// scriptedModel replays a fixed sequence of responses, one per Invoke.
type scriptedModel struct {
	mu        sync.Mutex
	responses []provider.Response
	calls     []provider.Request
	err       error
}

func (m *scriptedModel) Invoke(ctx context.Context, req provider.Request) (*provider.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("scripted model exhausted after %d calls", len(m.calls))
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return &resp, nil
}

func (m *scriptedModel) Name() string { return "scripted" }

func text(content string) provider.Response {
	return provider.Response{Content: content}
}

func call(id, name string, args map[string]string) provider.Response {
	return provider.Response{ToolCalls: []provider.ToolCall{{ID: id, Name: name, Args: args}}}
}

func runRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry()

	require.NoError(t, reg.Register(tool.Spec{
		ID:          "write_to_file",
		Name:        "Write To File",
		Description: "Write content to a file",
		Parameters: []tool.Parameter{
			{Name: "path", Required: true, Instruction: "File path"},
			{Name: "content", Required: true, Instruction: "File content"},
		},
	}, func(workdir string) tool.Handler {
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			return tool.OK(fmt.Sprintf("Wrote %d bytes to %s", len(args["content"]), args["path"]))
		})
	}))

	require.NoError(t, reg.Register(tool.Spec{
		ID:          tool.CompletionToolID,
		Name:        "Attempt Completion",
		Description: "Signal that the task is done",
		Parameters: []tool.Parameter{
			{Name: "result", Required: true, Instruction: "Final answer"},
		},
	}, func(workdir string) tool.Handler {
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			return tool.CompletionResult(args["result"])
		})
	}))

	return reg
}

func newRunGraph(t *testing.T, model provider.ChatModel, mutate func(*Config)) *Graph {
	t.Helper()
	cfg := Config{
		Model:       model,
		Registry:    runRegistry(t),
		Workdir:     t.TempDir(),
		ModelName:   "test-model",
		MaxSteps:    30,
		Planning:    true,
		Replan:      true,
		ToolTimeout: time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	g, err := New(cfg)
	require.NoError(t, err)
	return g
}

func TestGraph_VerifiedRun(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{
		text("1. Write hi to x.txt\n2. Signal completion"),
		call("c1", "write_to_file", map[string]string{"path": "x.txt", "content": "hi"}),
		call("c2", tool.CompletionToolID, map[string]string{"result": "wrote hi to x.txt"}),
		text("VERIFIED: the trace shows hi written to x.txt"),
	}}
	g := newRunGraph(t, model, nil)

	outcome, err := g.Run(context.Background(), "write hi to x.txt")
	require.NoError(t, err)

	assert.True(t, outcome.IsVerified)
	require.NotNil(t, outcome.FinalAnswer)
	assert.Equal(t, "wrote hi to x.txt", *outcome.FinalAnswer)
	assert.Equal(t, 1, outcome.PlanIteration)
	assert.NotEmpty(t, outcome.RunID)
	assert.Empty(t, model.responses, "every scripted response should be consumed")
}

func TestGraph_ReplanThenVerified(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{
		text("1. Signal completion immediately"),
		call("c1", tool.CompletionToolID, map[string]string{"result": "did nothing"}),
		text("NOT_VERIFIED: nothing was actually written"),
		text("1. Actually write the file\n2. Signal completion"),
		call("c2", "write_to_file", map[string]string{"path": "x.txt", "content": "hi"}),
		call("c3", tool.CompletionToolID, map[string]string{"result": "wrote hi to x.txt"}),
		text("VERIFIED: file written this time"),
	}}
	g := newRunGraph(t, model, nil)

	outcome, err := g.Run(context.Background(), "write hi to x.txt")
	require.NoError(t, err)

	assert.True(t, outcome.IsVerified)
	assert.Equal(t, 2, outcome.PlanIteration)
	require.NotNil(t, outcome.FinalAnswer)
	assert.Equal(t, "wrote hi to x.txt", *outcome.FinalAnswer)
}

func TestGraph_UnverifiedWithoutReplan(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{
		text("1. Signal completion"),
		call("c1", tool.CompletionToolID, map[string]string{"result": "did nothing"}),
		text("NOT_VERIFIED: task was not done"),
	}}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.Replan = false
	})

	outcome, err := g.Run(context.Background(), "write hi to x.txt")
	require.NoError(t, err)

	assert.False(t, outcome.IsVerified)
	require.NotNil(t, outcome.FinalAnswer)
	assert.Equal(t, "did nothing", *outcome.FinalAnswer)
	assert.Equal(t, 1, outcome.PlanIteration)
}

func TestGraph_PlanIterationCap(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{
		text("plan"),
		call("c1", tool.CompletionToolID, map[string]string{"result": "try 1"}),
		text("NOT_VERIFIED: wrong"),
		text("plan 2"),
		call("c2", tool.CompletionToolID, map[string]string{"result": "try 2"}),
		text("NOT_VERIFIED: still wrong"),
	}}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.MaxPlanIterations = 2
	})

	outcome, err := g.Run(context.Background(), "impossible task")
	require.NoError(t, err)

	assert.False(t, outcome.IsVerified)
	assert.Equal(t, 2, outcome.PlanIteration)
}

func TestGraph_PlanningDisabledStartsAtAgent(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{
		call("c1", tool.CompletionToolID, map[string]string{"result": "done"}),
		text("VERIFIED: fine"),
	}}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.Planning = false
	})

	outcome, err := g.Run(context.Background(), "trivial task")
	require.NoError(t, err)

	assert.True(t, outcome.IsVerified)
	assert.Equal(t, 0, outcome.PlanIteration)

	// First call is the agent: it carries the system prompt and tools.
	require.NotEmpty(t, model.calls)
	first := model.calls[0]
	assert.NotEmpty(t, first.System)
	assert.NotEmpty(t, first.Tools)
}

func TestGraph_EmbeddedMarkupFallback(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{
		text("I'll finish now.\n<attempt_completion>\n<result>done via markup</result>\n</attempt_completion>"),
		text("VERIFIED: ok"),
	}}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.Planning = false
	})

	outcome, err := g.Run(context.Background(), "trivial task")
	require.NoError(t, err)

	assert.True(t, outcome.IsVerified)
	require.NotNil(t, outcome.FinalAnswer)
	assert.Equal(t, "done via markup", *outcome.FinalAnswer)
}

func TestGraph_StepBudgetExceeded(t *testing.T) {
	// The agent never calls a tool, so the run loops until the budget.
	responses := make([]provider.Response, 0, 12)
	for i := 0; i < 12; i++ {
		responses = append(responses, text("still thinking"))
	}
	model := &scriptedModel{responses: responses}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.Planning = false
		cfg.MaxSteps = 5
	})

	outcome, err := g.Run(context.Background(), "loop forever")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepBudgetExceeded)
	require.NotNil(t, outcome)
	assert.Equal(t, 5, outcome.Steps)
	assert.False(t, outcome.IsVerified)
}

func TestGraph_ModelErrorIsFatal(t *testing.T) {
	model := &scriptedModel{err: errors.New("boom")}
	g := newRunGraph(t, model, nil)

	outcome, err := g.Run(context.Background(), "any task")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner node")
	assert.NotNil(t, outcome)

	// Exactly one call: the core never retries.
	assert.Len(t, model.calls, 1)
}

func TestGraph_ContextCancellation(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{text("plan")}}
	g := newRunGraph(t, model, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := g.Run(ctx, "any task")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, outcome)
}

func TestGraph_EmptyTask(t *testing.T) {
	g := newRunGraph(t, &scriptedModel{}, nil)
	_, err := g.Run(context.Background(), "")
	assert.Error(t, err)
}

func TestGraph_RegistryFrozenDuringRun(t *testing.T) {
	reg := runRegistry(t)
	var sawFrozen bool

	model := &scriptedModel{responses: []provider.Response{
		call("c1", tool.CompletionToolID, map[string]string{"result": "done"}),
		text("VERIFIED: ok"),
	}}

	// Observe the frozen flag from inside a handler mid-run.
	require.NoError(t, reg.RegisterOverwrite(tool.Spec{
		ID:          tool.CompletionToolID,
		Name:        "Attempt Completion",
		Description: "Signal that the task is done",
		Parameters: []tool.Parameter{
			{Name: "result", Required: true, Instruction: "Final answer"},
		},
	}, func(workdir string) tool.Handler {
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			sawFrozen = reg.Frozen()
			return tool.CompletionResult(args["result"])
		})
	}))

	g, err := New(Config{
		Model:    model,
		Registry: reg,
		Workdir:  t.TempDir(),
		Replan:   true,
	})
	require.NoError(t, err)

	_, err = g.Run(context.Background(), "trivial task")
	require.NoError(t, err)

	assert.True(t, sawFrozen)
	assert.False(t, reg.Frozen(), "registry thaws after the run")
}

func TestGraph_VerifierSeesTrace(t *testing.T) {
	model := &scriptedModel{responses: []provider.Response{
		call("c1", "write_to_file", map[string]string{"path": "x.txt", "content": "hi"}),
		call("c2", tool.CompletionToolID, map[string]string{"result": "wrote it"}),
		text("VERIFIED: trace checks out"),
	}}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.Planning = false
	})

	_, err := g.Run(context.Background(), "write hi to x.txt")
	require.NoError(t, err)

	// The last call is the verifier; its prompt embeds the tool trace.
	require.Len(t, model.calls, 3)
	verifierPrompt := model.calls[2].Messages[0].Content
	assert.Contains(t, verifierPrompt, "write_to_file")
	assert.Contains(t, verifierPrompt, "wrote it")
}

func TestGraph_InvalidTemplateRejectedAtNew(t *testing.T) {
	_, err := New(Config{
		Model:    &scriptedModel{},
		Registry: runRegistry(t),
		Templates: prompt.Templates{
			Verifier: "only {answer}",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required placeholder")
}

type capturingStore struct {
	task    string
	outcome *Outcome
	err     error
}

func (s *capturingStore) SaveRun(ctx context.Context, task string, outcome *Outcome) error {
	s.task = task
	s.outcome = outcome
	return s.err
}

func TestGraph_OutcomeArchived(t *testing.T) {
	store := &capturingStore{}
	model := &scriptedModel{responses: []provider.Response{
		call("c1", tool.CompletionToolID, map[string]string{"result": "done"}),
		text("VERIFIED: ok"),
	}}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.Planning = false
		cfg.Store = store
	})

	outcome, err := g.Run(context.Background(), "trivial task")
	require.NoError(t, err)

	require.NotNil(t, store.outcome)
	assert.Equal(t, "trivial task", store.task)
	assert.Equal(t, outcome.RunID, store.outcome.RunID)
}

func TestGraph_StoreFailureNotFatal(t *testing.T) {
	store := &capturingStore{err: errors.New("disk full")}
	model := &scriptedModel{responses: []provider.Response{
		call("c1", tool.CompletionToolID, map[string]string{"result": "done"}),
		text("VERIFIED: ok"),
	}}
	g := newRunGraph(t, model, func(cfg *Config) {
		cfg.Planning = false
		cfg.Store = store
	})

	outcome, err := g.Run(context.Background(), "trivial task")
	require.NoError(t, err)
	assert.True(t, outcome.IsVerified)
}

func TestTurnsToMessages(t *testing.T) {
	inv := tool.Invocation{ID: "i1", ToolID: "write_to_file", Args: map[string]string{"path": "x"}}
	turns := []conversation.Turn{
		conversation.Human("Task: do it"),
		conversation.System("[Previous conversation summary: 3 earlier turns elided]"),
		conversation.AssistantWithCalls("writing", []tool.Invocation{inv}),
		conversation.ToolResultTurn(inv, tool.OK("done")),
	}

	messages := turnsToMessages(turns)
	require.Len(t, messages, 4)

	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)

	assert.Equal(t, "assistant", messages[2].Role)
	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "i1", messages[2].ToolCalls[0].ID)
	assert.Equal(t, "write_to_file", messages[2].ToolCalls[0].Name)

	assert.Equal(t, "tool", messages[3].Role)
	assert.Equal(t, "i1", messages[3].ToolCallID)
}
