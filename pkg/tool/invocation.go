package tool

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Invocation is a single request to run a tool. It is created when model
// output is parsed, consumed exactly once by the executor, and never
// mutated afterwards.
type Invocation struct {
	ID         string            `json:"id"`
	ToolID     string            `json:"tool_id"`
	Args       map[string]string `json:"args"`
	OriginTurn int               `json:"origin_turn"`
}

// NewInvocation creates an invocation with a fresh ID.
func NewInvocation(toolID string, args map[string]string) Invocation {
	id, err := gonanoid.New()
	if err != nil {
		// nanoid only fails when the entropy source does
		id = "inv-" + toolID
	}
	if args == nil {
		args = map[string]string{}
	}
	return Invocation{ID: id, ToolID: toolID, Args: args}
}
