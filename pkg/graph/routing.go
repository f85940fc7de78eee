package graph

import "github.com/harun/maestro/pkg/conversation"

// Routing decisions are pure functions of the turn sequence's shape: the
// presence and kind of invocations on the latest turns, plus the
// completion-signal marker. They never inspect message content heuristics.

// routeAfterAgent sends the run to the tools node when the latest
// assistant turn carries pending invocations, otherwise loops the agent.
func routeAfterAgent(turns []conversation.Turn) string {
	if len(turns) == 0 {
		return nodeAgent
	}
	last := turns[len(turns)-1]
	if last.HasInvocations() {
		return nodeTools
	}
	return nodeAgent
}

// routeAfterTools inspects the latest batch of tool-result turns. If any
// result in the batch carries the completion signal the run proceeds to
// verification; otherwise control returns to the agent.
func routeAfterTools(turns []conversation.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role != conversation.RoleTool {
			break
		}
		if t.IsCompletionSignal() {
			return nodeVerifier
		}
	}
	return nodeAgent
}

// routeAfterVerifier ends the run on a positive judgment, when replanning
// is disabled, or when the plan iteration cap is reached.
func (g *Graph) routeAfterVerifier(state *conversation.State) string {
	if state.IsVerified {
		return nodeDone
	}
	if !g.cfg.Replan {
		return nodeDone
	}
	if g.cfg.MaxPlanIterations > 0 && state.PlanIteration >= g.cfg.MaxPlanIterations {
		return nodeDone
	}
	return nodeReplan
}
