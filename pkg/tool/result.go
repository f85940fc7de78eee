package tool

import (
	"fmt"
	"strings"
)

// CompletionToolID is the designated tool whose invocation signals that the
// model believes the task is finished. Its result carries a marker the
// routing logic detects without inspecting other message content.
const CompletionToolID = "attempt_completion"

const completionMarker = "[TASK_COMPLETE]"

// Result is the outcome of one tool invocation. Handlers never return
// errors to callers; every fault is folded into a failed Result.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK creates a successful result.
func OK(output string) Result {
	return Result{Success: true, Output: output}
}

// Errf creates a failed result with a formatted error message.
func Errf(format string, args ...interface{}) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// CompletionResult wraps a proposed final answer with the completion marker.
func CompletionResult(answer string) Result {
	return OK(completionMarker + "\n" + answer)
}

// IsCompletion reports whether this result carries the completion signal.
func (r Result) IsCompletion() bool {
	return r.Success && strings.HasPrefix(r.Output, completionMarker)
}

// CompletionAnswer extracts the final answer from a completion result.
// Only the separator newline after the marker is stripped; the answer
// itself is preserved verbatim. Returns "" when the result is not a
// completion signal.
func (r Result) CompletionAnswer() string {
	if !r.IsCompletion() {
		return ""
	}
	answer := strings.TrimPrefix(r.Output, completionMarker)
	return strings.TrimPrefix(answer, "\n")
}

// Text returns the conversational rendering of the result: the output on
// success, the error message otherwise.
func (r Result) Text() string {
	if r.Success {
		return r.Output
	}
	return "Error: " + r.Error
}
