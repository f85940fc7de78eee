package graph

import (
	"context"
	"fmt"

	"github.com/harun/maestro/pkg/conversation"
	"github.com/harun/maestro/pkg/prompt"
	"github.com/harun/maestro/pkg/provider"
	"github.com/harun/maestro/pkg/tool"
)

// runPlanner produces the initial implementation plan.
func (g *Graph) runPlanner(ctx context.Context, state *conversation.State) (conversation.Update, error) {
	planningPrompt := g.builder.Render(prompt.NodePlanner, map[string]string{
		"task": state.Task,
	})

	resp, err := g.model.Invoke(ctx, provider.Request{
		Model:       g.cfg.ModelName,
		Messages:    []provider.Message{{Role: "user", Content: planningPrompt}},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return conversation.Update{}, fmt.Errorf("planning failed: %w", err)
	}

	plan := resp.Content
	return conversation.Update{
		Plan:          conversation.StringPtr(plan),
		PlanIteration: conversation.IntPtr(1),
		Turns: []conversation.Turn{
			conversation.Human("Task: " + state.Task),
			conversation.Assistant("Plan created:\n\n" + plan),
		},
	}, nil
}

// runAgent performs one reasoning step: the model sees the full history
// plus the agent system prompt and either replies with reasoning text or
// requests tool invocations. Structured tool calls win over embedded
// markup; markup is only consulted when the reply is plain text.
func (g *Graph) runAgent(ctx context.Context, state *conversation.State) (conversation.Update, error) {
	system := g.builder.Render(prompt.NodeAgent, map[string]string{
		"task": state.Task,
		"plan": state.Plan,
	})

	view := conversation.Compact(state.Turns, state.MaxContextTokens)

	resp, err := g.model.Invoke(ctx, provider.Request{
		Model:       g.cfg.ModelName,
		System:      system,
		Messages:    turnsToMessages(view),
		Tools:       g.registry.SpecsFor(g.cfg.Family),
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return conversation.Update{}, fmt.Errorf("model call failed: %w", err)
	}

	origin := len(state.Turns)

	if len(resp.ToolCalls) > 0 {
		invs := make([]tool.Invocation, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			inv := tool.Invocation{ID: tc.ID, ToolID: tc.Name, Args: tc.Args, OriginTurn: origin}
			if inv.ID == "" {
				inv = tool.NewInvocation(tc.Name, tc.Args)
				inv.OriginTurn = origin
			}
			if inv.Args == nil {
				inv.Args = map[string]string{}
			}
			invs = append(invs, inv)
		}
		return conversation.Update{
			Turns: []conversation.Turn{conversation.AssistantWithCalls(resp.Content, invs)},
		}, nil
	}

	if inv, ok := tool.ParseInvocation(resp.Content, g.registry.Has); ok {
		inv.OriginTurn = origin
		return conversation.Update{
			Turns: []conversation.Turn{conversation.AssistantWithCalls(resp.Content, []tool.Invocation{inv})},
		}, nil
	}

	return conversation.Update{
		Turns: []conversation.Turn{conversation.Assistant(resp.Content)},
	}, nil
}

// runTools executes every invocation pending on the latest assistant turn.
// The whole batch runs even when the completion signal appears mid-batch;
// results are appended in invocation order.
func (g *Graph) runTools(ctx context.Context, state *conversation.State) conversation.Update {
	last, ok := state.LastTurn()
	if !ok || !last.HasInvocations() {
		return conversation.Update{}
	}

	results := g.executor.ExecuteBatch(ctx, last.Invocations)

	turns := make([]conversation.Turn, 0, len(results))
	for i, res := range results {
		turns = append(turns, conversation.ToolResultTurn(last.Invocations[i], res))
	}
	return conversation.Update{Turns: turns}
}

// runVerifier judges whether the claimed completion satisfies the task.
// The verdict is parsed fail-closed: anything without a recognized leading
// token counts as not verified.
func (g *Graph) runVerifier(ctx context.Context, state *conversation.State) (conversation.Update, error) {
	answer, ok := state.LatestCompletion()
	if !ok {
		return conversation.Update{
			IsVerified:       conversation.BoolPtr(false),
			ClearFinalAnswer: true,
		}, nil
	}

	verificationPrompt := g.builder.Render(prompt.NodeVerifier, map[string]string{
		"task":          state.Task,
		"answer":        answer,
		"trace_section": conversation.FormatTrace(state.Turns),
	})

	resp, err := g.model.Invoke(ctx, provider.Request{
		Model:       g.cfg.ModelName,
		Messages:    []provider.Message{{Role: "user", Content: verificationPrompt}},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return conversation.Update{}, fmt.Errorf("verification failed: %w", err)
	}

	verified := parseVerdict(resp.Content)

	return conversation.Update{
		IsVerified:  conversation.BoolPtr(verified),
		FinalAnswer: conversation.StringPtr(answer),
		Turns: []conversation.Turn{
			conversation.Human("Verification result: " + resp.Content),
		},
	}, nil
}

// runReplan produces a revised plan from the verification feedback and
// resets the completion state for the next attempt.
func (g *Graph) runReplan(ctx context.Context, state *conversation.State) (conversation.Update, error) {
	feedback := "No specific feedback available."
	if last, ok := state.LastTurn(); ok && last.Content != "" {
		feedback = last.Content
	}

	replanPrompt := g.builder.Render(prompt.NodeReplan, map[string]string{
		"task":                  state.Task,
		"previous_plan":         state.Plan,
		"verification_feedback": feedback,
	})

	resp, err := g.model.Invoke(ctx, provider.Request{
		Model:       g.cfg.ModelName,
		Messages:    []provider.Message{{Role: "user", Content: replanPrompt}},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return conversation.Update{}, fmt.Errorf("replanning failed: %w", err)
	}

	newPlan := resp.Content
	nextIteration := state.PlanIteration + 1

	return conversation.Update{
		Plan:             conversation.StringPtr(newPlan),
		PlanIteration:    conversation.IntPtr(nextIteration),
		ClearFinalAnswer: true,
		IsVerified:       conversation.BoolPtr(false),
		Turns: []conversation.Turn{
			conversation.Assistant(fmt.Sprintf("Creating improved plan (iteration %d):\n\n%s", nextIteration, newPlan)),
		},
	}, nil
}

// turnsToMessages maps conversation turns to provider messages. System
// turns (compaction summaries) are forwarded as user messages because the
// system prompt travels separately on the request.
func turnsToMessages(turns []conversation.Turn) []provider.Message {
	messages := make([]provider.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case conversation.RoleAssistant:
			msg := provider.Message{Role: "assistant", Content: t.Content}
			for _, inv := range t.Invocations {
				msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
					ID:   inv.ID,
					Name: inv.ToolID,
					Args: inv.Args,
				})
			}
			messages = append(messages, msg)

		case conversation.RoleTool:
			messages = append(messages, provider.Message{
				Role:       "tool",
				Content:    t.Content,
				ToolCallID: t.InvocationID,
			})

		default: // human and system turns
			messages = append(messages, provider.Message{Role: "user", Content: t.Content})
		}
	}
	return messages
}
