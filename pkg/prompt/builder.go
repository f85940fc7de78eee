package prompt

import (
	"fmt"
	"strings"

	"github.com/harun/maestro/pkg/tool"
)

// Builder assembles node prompts from templates, dynamic values, and the
// registered tools' instructions.
type Builder struct {
	registry  *tool.Registry
	family    tool.ModelFamily
	workdir   string
	templates Templates
}

// NewBuilder creates a prompt builder. The templates must already be
// validated; NewBuilder re-checks and rejects invalid ones so a builder
// can never render from a broken configuration.
func NewBuilder(registry *tool.Registry, family tool.ModelFamily, workdir string, templates Templates) (*Builder, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if family == "" {
		family = tool.FamilyGeneric
	}
	if err := templates.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		registry:  registry,
		family:    family,
		workdir:   workdir,
		templates: templates,
	}, nil
}

// Render produces the prompt for a node. The values map supplies the
// node's dynamic placeholders (task, plan, answer, ...); the tool
// instruction block is always computed here and injected regardless of
// template mode.
func (b *Builder) Render(node string, values map[string]string) string {
	merged := make(map[string]string, len(values)+1)
	for k, v := range values {
		merged[k] = v
	}
	merged["tool_instructions"] = b.ToolInstructionBlock(node)

	custom := b.templates.forNode(node)
	switch {
	case custom == "":
		return substitute(builtinTemplates[node], merged)
	case isExplicit(custom):
		return substitute(custom, merged)
	default:
		return substitute(autoWrap(node, custom), merged)
	}
}

// autoWrap turns plain template text into an explicit template: the node's
// dynamic sections first, the caller's text in the middle, and the tool
// instruction block at the end.
func autoWrap(node, text string) string {
	var b strings.Builder

	b.WriteString("# Task\n{task}\n")
	switch node {
	case NodeAgent:
		b.WriteString("\n# Implementation Plan\n{plan}\n")
	case NodeVerifier:
		b.WriteString("\n# Proposed Answer\n{answer}\n")
		b.WriteString("\n# Execution Trace\n{trace_section}\n")
	case NodeReplan:
		b.WriteString("\n# Previous Plan\n{previous_plan}\n")
		b.WriteString("\n# Verification Feedback\n{verification_feedback}\n")
	}

	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n\n{tool_instructions}")
	return b.String()
}

// ToolInstructionBlock renders the tool section for a node: every visible
// tool's spec section, followed by node-targeted instructions aggregated in
// registry order, each attributed to its tool.
func (b *Builder) ToolInstructionBlock(node string) string {
	specs := b.registry.SpecsFor(b.family)
	if len(specs) == 0 {
		return "# Tools\n\nNo tools available."
	}

	sections := make([]string, 0, len(specs))
	for _, s := range specs {
		sections = append(sections, s.PromptSection())
	}

	var block strings.Builder
	block.WriteString("# Tools\n\n")
	if b.workdir != "" {
		fmt.Fprintf(&block, "Relative paths are resolved from the working directory: %s\n\n", b.workdir)
	}
	block.WriteString(strings.Join(sections, "\n\n"))

	var nodeNotes []string
	for _, s := range specs {
		if text, ok := s.InstructionForNode(node); ok && text != "" {
			nodeNotes = append(nodeNotes, fmt.Sprintf("- %s: %s", s.ID, text))
		}
	}
	if len(nodeNotes) > 0 {
		block.WriteString("\n\n# Tool Guidance\n\n")
		block.WriteString(strings.Join(nodeNotes, "\n"))
	}

	return block.String()
}

// AvailableTools lists the tool IDs visible to this builder's model family.
func (b *Builder) AvailableTools() []string {
	specs := b.registry.SpecsFor(b.family)
	ids := make([]string, 0, len(specs))
	for _, s := range specs {
		ids = append(ids, s.ID)
	}
	return ids
}
