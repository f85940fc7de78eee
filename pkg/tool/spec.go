package tool

import (
	"fmt"
	"strings"
)

// ModelFamily identifies which model family a spec variant targets.
type ModelFamily string

const (
	FamilyGeneric   ModelFamily = "generic"
	FamilyAnthropic ModelFamily = "anthropic"
	FamilyOpenAI    ModelFamily = "openai"
	FamilyGemini    ModelFamily = "gemini"
)

// Parameter describes a single tool parameter.
type Parameter struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Instruction string `json:"instruction"`
	Usage       string `json:"usage,omitempty"`
}

// Spec declares a tool: its identity, parameters, and prompt-facing text.
// Different variants of the same tool ID may be registered for different
// model families; lookup falls back to the generic variant.
type Spec struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Variant     ModelFamily `json:"variant"`
	Parameters  []Parameter `json:"parameters"`
	Instruction string      `json:"instruction,omitempty"`

	// NodeInstructions maps an orchestration node name (planner, agent,
	// verifier, replan) to guidance injected into that node's prompt.
	// Nodes absent from the map get nothing for this tool.
	NodeInstructions map[string]string `json:"node_instructions,omitempty"`
}

// RequiredParams returns the names of all required parameters.
func (s Spec) RequiredParams() []string {
	var names []string
	for _, p := range s.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// InputSchema returns a JSON-Schema-shaped map describing the tool's
// arguments, suitable for native tool-calling APIs.
func (s Spec) InputSchema() map[string]interface{} {
	properties := map[string]interface{}{}
	for _, p := range s.Parameters {
		properties[p.Name] = map[string]interface{}{
			"type":        "string",
			"description": p.Instruction,
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if required := s.RequiredParams(); len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// PromptSection renders the spec as a system prompt section, including the
// tag-based usage template for models without native tool calling.
func (s Spec) PromptSection() string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n", s.ID)
	fmt.Fprintf(&b, "Description: %s\n", s.Description)

	if len(s.Parameters) > 0 {
		b.WriteString("Parameters:\n")
		for _, p := range s.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "- %s: (%s) %s\n", p.Name, req, p.Instruction)
		}
	} else {
		b.WriteString("Parameters: None\n")
	}

	b.WriteString("Usage:\n")
	fmt.Fprintf(&b, "<%s>\n", s.ID)
	for _, p := range s.Parameters {
		usage := p.Usage
		if usage == "" {
			usage = p.Name + " here"
		}
		fmt.Fprintf(&b, "<%s>%s</%s>\n", p.Name, usage, p.Name)
	}
	fmt.Fprintf(&b, "</%s>", s.ID)

	if s.Instruction != "" {
		b.WriteString("\n")
		b.WriteString(s.Instruction)
	}

	return b.String()
}

// InstructionForNode returns the node-targeted instruction for this tool,
// if one was declared.
func (s Spec) InstructionForNode(node string) (string, bool) {
	text, ok := s.NodeInstructions[node]
	return text, ok
}
