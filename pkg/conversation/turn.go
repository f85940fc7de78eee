package conversation

import "github.com/harun/maestro/pkg/tool"

// Role tags a conversation turn.
type Role string

const (
	RoleHuman     Role = "human"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one entry in the ordered conversation history. The history is
// append-only; insertion order is the only meaningful order.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Invocations carries pending tool calls on assistant turns.
	Invocations []tool.Invocation `json:"invocations,omitempty"`

	// ToolID and InvocationID identify the call a tool-result turn answers.
	ToolID       string `json:"tool_id,omitempty"`
	InvocationID string `json:"invocation_id,omitempty"`
	Success      bool   `json:"success,omitempty"`
}

// Human creates a human turn.
func Human(content string) Turn {
	return Turn{Role: RoleHuman, Content: content}
}

// System creates a system turn.
func System(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// Assistant creates an assistant turn with no pending invocations.
func Assistant(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// AssistantWithCalls creates an assistant turn carrying pending invocations.
func AssistantWithCalls(content string, invs []tool.Invocation) Turn {
	return Turn{Role: RoleAssistant, Content: content, Invocations: invs}
}

// ToolResultTurn creates a tool-result turn answering the given invocation.
func ToolResultTurn(inv tool.Invocation, res tool.Result) Turn {
	return Turn{
		Role:         RoleTool,
		Content:      res.Text(),
		ToolID:       inv.ToolID,
		InvocationID: inv.ID,
		Success:      res.Success,
	}
}

// HasInvocations reports whether an assistant turn carries pending calls.
func (t Turn) HasInvocations() bool {
	return t.Role == RoleAssistant && len(t.Invocations) > 0
}

// IsCompletionSignal reports whether the turn is the result of the
// completion-signal tool.
func (t Turn) IsCompletionSignal() bool {
	if t.Role != RoleTool || !t.Success {
		return false
	}
	return t.ToolID == tool.CompletionToolID && tool.OK(t.Content).IsCompletion()
}

// CompletionAnswer extracts the final answer from a completion-signal turn.
func (t Turn) CompletionAnswer() string {
	if !t.IsCompletionSignal() {
		return ""
	}
	return tool.OK(t.Content).CompletionAnswer()
}
