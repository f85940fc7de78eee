package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harun/maestro/pkg/conversation"
	"github.com/harun/maestro/pkg/prompt"
	"github.com/harun/maestro/pkg/provider"
	"github.com/harun/maestro/pkg/tool"
)

// Node names of the orchestration state machine. The prompt-owning nodes
// reuse the prompt package's names so templates and routing stay aligned.
const (
	nodePlanner  = prompt.NodePlanner
	nodeAgent    = prompt.NodeAgent
	nodeTools    = "tools"
	nodeVerifier = prompt.NodeVerifier
	nodeReplan   = prompt.NodeReplan
	nodeDone     = "done"
)

// ErrStepBudgetExceeded terminates a run that has consumed its step budget
// without reaching a verified completion.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

const defaultMaxSteps = 50

// Config assembles a Graph.
type Config struct {
	// Model is the chat model collaborator. Retry policy, if any, must be
	// layered onto the model (provider.WithRetry); the graph treats every
	// model error as fatal for the run.
	Model provider.ChatModel

	// Registry catalogues the available tools. The graph freezes it for
	// the duration of each run.
	Registry *tool.Registry

	// Workdir is the filesystem root passed to every tool invocation.
	Workdir string

	// Family selects tool spec variants; empty means generic.
	Family tool.ModelFamily

	ModelName   string
	Temperature float64
	MaxTokens   int

	// Templates hold optional custom node prompts, validated at New time.
	Templates prompt.Templates

	// MaxSteps bounds the number of node transitions per run.
	MaxSteps int

	// Planning enables the planner entry node; when disabled runs start
	// directly at the agent node.
	Planning bool

	// Replan enables replanning after a failed verification.
	Replan bool

	// MaxPlanIterations caps replanning; 0 means no cap beyond MaxSteps.
	MaxPlanIterations int

	MaxContextTokens int
	ToolTimeout      time.Duration

	// Store, when set, receives the outcome of every finished run.
	// Persistence failures are logged, never fatal.
	Store RunStore

	Logger *zerolog.Logger
}

// RunStore archives finished runs. The runstore package provides a
// SQLite-backed implementation.
type RunStore interface {
	SaveRun(ctx context.Context, task string, outcome *Outcome) error
}

// Graph is the orchestration state machine: a fixed set of nodes with
// conditional routing, driving a chat model and a tool executor toward a
// verified outcome. Nodes execute strictly sequentially; the only
// suspension points are model calls and tool execution.
type Graph struct {
	cfg      Config
	model    provider.ChatModel
	registry *tool.Registry
	executor *tool.Executor
	builder  *prompt.Builder
	logger   zerolog.Logger
}

// Outcome is the result of one run.
type Outcome struct {
	RunID         string              `json:"run_id"`
	FinalAnswer   *string             `json:"final_answer,omitempty"`
	IsVerified    bool                `json:"is_verified"`
	PlanIteration int                 `json:"plan_iteration"`
	Turns         []conversation.Turn `json:"turns"`
	Steps         int                 `json:"steps"`
}

// New builds a graph. Template validation happens here, at configuration
// time; a run can never start with a broken template.
func New(cfg Config) (*Graph, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	if cfg.Family == "" {
		cfg.Family = tool.FamilyGeneric
	}

	builder, err := prompt.NewBuilder(cfg.Registry, cfg.Family, cfg.Workdir, cfg.Templates)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt configuration: %w", err)
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	executor, err := tool.NewExecutor(tool.ExecutorConfig{
		Registry: cfg.Registry,
		Family:   cfg.Family,
		Workdir:  cfg.Workdir,
		Timeout:  cfg.ToolTimeout,
		Logger:   &logger,
	})
	if err != nil {
		return nil, err
	}

	return &Graph{
		cfg:      cfg,
		model:    cfg.Model,
		registry: cfg.Registry,
		executor: executor,
		builder:  builder,
		logger:   logger,
	}, nil
}

// Run executes a task from start to finish. Three endings are
// distinguishable by the caller: verified completion (nil error,
// IsVerified true), unverified completion (nil error, IsVerified false —
// replanning disabled or exhausted), and fatal error (model transport
// fault, context cancellation, or ErrStepBudgetExceeded). The outcome
// snapshot is returned in every case.
func (g *Graph) Run(ctx context.Context, task string) (*Outcome, error) {
	if task == "" {
		return nil, fmt.Errorf("task cannot be empty")
	}

	runID := uuid.New().String()
	logger := g.logger.With().Str("run_id", runID).Logger()

	g.registry.Freeze()
	defer g.registry.Thaw()

	state := conversation.NewState(task, g.cfg.MaxContextTokens)

	node := nodeAgent
	if g.cfg.Planning {
		node = nodePlanner
	}

	steps := 0
	for node != nodeDone {
		// Cooperative cancellation checkpoint between nodes.
		select {
		case <-ctx.Done():
			return outcome(runID, state, steps), ctx.Err()
		default:
		}

		if steps >= g.cfg.MaxSteps {
			logger.Warn().Int("steps", steps).Msg("Step budget exceeded")
			return outcome(runID, state, steps), fmt.Errorf("run %s terminated after %d steps: %w", runID, steps, ErrStepBudgetExceeded)
		}
		steps++

		logger.Debug().Str("node", node).Int("step", steps).Msg("Entering node")

		var (
			update conversation.Update
			next   string
			err    error
		)

		switch node {
		case nodePlanner:
			update, err = g.runPlanner(ctx, state)
			state.Apply(update)
			next = nodeAgent

		case nodeAgent:
			update, err = g.runAgent(ctx, state)
			state.Apply(update)
			next = routeAfterAgent(state.Turns)

		case nodeTools:
			update = g.runTools(ctx, state)
			state.Apply(update)
			next = routeAfterTools(state.Turns)

		case nodeVerifier:
			update, err = g.runVerifier(ctx, state)
			state.Apply(update)
			next = g.routeAfterVerifier(state)

		case nodeReplan:
			update, err = g.runReplan(ctx, state)
			state.Apply(update)
			next = nodeAgent

		default:
			return outcome(runID, state, steps), fmt.Errorf("unknown node: %s", node)
		}

		if err != nil {
			logger.Error().Str("node", node).Err(err).Msg("Node failed")
			return outcome(runID, state, steps), fmt.Errorf("%s node: %w", node, err)
		}

		node = next
	}

	result := outcome(runID, state, steps)
	if g.cfg.Store != nil {
		if err := g.cfg.Store.SaveRun(ctx, task, result); err != nil {
			logger.Warn().Err(err).Msg("Failed to archive run")
		}
	}
	logger.Info().
		Bool("verified", result.IsVerified).
		Int("plan_iteration", result.PlanIteration).
		Int("steps", steps).
		Msg("Run finished")
	return result, nil
}

func outcome(runID string, state *conversation.State, steps int) *Outcome {
	return &Outcome{
		RunID:         runID,
		FinalAnswer:   state.FinalAnswer,
		IsVerified:    state.IsVerified,
		PlanIteration: state.PlanIteration,
		Turns:         state.Turns,
		Steps:         steps,
	}
}
