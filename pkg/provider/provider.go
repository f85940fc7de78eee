package provider

import (
	"context"
	"fmt"

	"github.com/harun/maestro/pkg/tool"
)

// Message is one entry in a chat request.
type Message struct {
	Role       string     `json:"role"` // system, user, assistant, tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a structured tool call emitted by a model. Argument values
// are normalized to strings; non-string JSON values arrive JSON-encoded.
type ToolCall struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Args map[string]string `json:"args"`
}

// Usage tracks token consumption for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Request contains the parameters for one chat model call.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Tools       []tool.Spec
	Temperature float64
	MaxTokens   int
}

// Response is the model's reply: reasoning text, structured tool calls,
// or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *Usage
}

// ChatModel is the capability the orchestration core requires from an LLM
// client. Invoke blocks until the model responds or ctx expires. Transport
// faults are returned as errors; the core treats them as fatal for the
// current run, so any retry policy belongs on this side of the boundary
// (see WithRetry).
type ChatModel interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// New creates a chat model adapter for a provider name.
func New(providerName, apiKey string) (ChatModel, error) {
	switch providerName {
	case "anthropic":
		return NewAnthropic(apiKey), nil
	case "openai":
		return NewOpenAI(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// Family maps a provider name to the tool spec variant it should see.
func Family(providerName string) tool.ModelFamily {
	switch providerName {
	case "anthropic":
		return tool.FamilyAnthropic
	case "openai":
		return tool.FamilyOpenAI
	case "gemini":
		return tool.FamilyGemini
	default:
		return tool.FamilyGeneric
	}
}
