package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpec_RequiredParams(t *testing.T) {
	spec := Spec{
		ID: "write_to_file",
		Parameters: []Parameter{
			{Name: "path", Required: true},
			{Name: "content", Required: true},
			{Name: "mode", Required: false},
		},
	}
	assert.Equal(t, []string{"path", "content"}, spec.RequiredParams())
}

func TestSpec_InputSchema(t *testing.T) {
	spec := Spec{
		ID: "read_file",
		Parameters: []Parameter{
			{Name: "path", Required: true, Instruction: "File path to read"},
			{Name: "limit", Required: false, Instruction: "Max lines"},
		},
	}

	schema := spec.InputSchema()
	assert.Equal(t, "object", schema["type"])

	props := schema["properties"].(map[string]interface{})
	assert.Len(t, props, 2)
	path := props["path"].(map[string]interface{})
	assert.Equal(t, "string", path["type"])
	assert.Equal(t, "File path to read", path["description"])

	assert.Equal(t, []string{"path"}, schema["required"])
}

func TestSpec_InputSchemaNoRequired(t *testing.T) {
	spec := Spec{ID: "noop"}
	schema := spec.InputSchema()
	_, has := schema["required"]
	assert.False(t, has)
}

func TestSpec_PromptSection(t *testing.T) {
	spec := Spec{
		ID:          "read_file",
		Description: "Read a file from the workspace",
		Parameters: []Parameter{
			{Name: "path", Required: true, Instruction: "Relative file path", Usage: "src/main.go"},
		},
		Instruction: "Prefer relative paths.",
	}

	section := spec.PromptSection()
	assert.True(t, strings.HasPrefix(section, "## read_file\n"))
	assert.Contains(t, section, "Description: Read a file from the workspace")
	assert.Contains(t, section, "- path: (required) Relative file path")
	assert.Contains(t, section, "<read_file>\n<path>src/main.go</path>\n</read_file>")
	assert.Contains(t, section, "Prefer relative paths.")
}

func TestSpec_PromptSectionNoParams(t *testing.T) {
	spec := Spec{ID: "noop", Description: "Does nothing"}
	section := spec.PromptSection()
	assert.Contains(t, section, "Parameters: None")
	assert.Contains(t, section, "<noop>\n</noop>")
}

func TestSpec_InstructionForNode(t *testing.T) {
	spec := Spec{
		ID:               "execute_command",
		NodeInstructions: map[string]string{"agent": "Commands run in the workspace root."},
	}

	text, ok := spec.InstructionForNode("agent")
	assert.True(t, ok)
	assert.Equal(t, "Commands run in the workspace root.", text)

	_, ok = spec.InstructionForNode("verifier")
	assert.False(t, ok)
}

func TestResult_Completion(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		r := CompletionResult("the answer")
		assert.True(t, r.IsCompletion())
		assert.Equal(t, "the answer", r.CompletionAnswer())
	})

	t.Run("answer whitespace is preserved", func(t *testing.T) {
		r := CompletionResult("  indented code block\n")
		assert.Equal(t, "  indented code block\n", r.CompletionAnswer())
	})

	t.Run("answer with interior newlines", func(t *testing.T) {
		r := CompletionResult("line one\n\nline two")
		assert.Equal(t, "line one\n\nline two", r.CompletionAnswer())
	})

	t.Run("plain result is not completion", func(t *testing.T) {
		r := OK("just output")
		assert.False(t, r.IsCompletion())
		assert.Equal(t, "", r.CompletionAnswer())
	})

	t.Run("failure is not completion", func(t *testing.T) {
		r := Result{Success: false, Output: "[TASK_COMPLETE]\nnope"}
		assert.False(t, r.IsCompletion())
	})
}

func TestResult_Text(t *testing.T) {
	assert.Equal(t, "hello", OK("hello").Text())
	assert.Equal(t, "Error: it broke", Errf("it %s", "broke").Text())
}
