// Package tool declares tool specifications, the registry that catalogues
// them, and the invocation protocol that parses, validates, and executes
// tool calls on the model's behalf.
//
// Invariants:
// - Tool IDs are unique per model-family variant; lookup falls back to the
//   generic variant.
// - Arguments are schema-validated before dispatch.
// - Handler faults never escape as errors; every failure is a Result.
// - The registry is frozen (read-only) while a run is active.
//
// Usage:
//
//	reg := tool.NewRegistry()
//	_ = reg.Register(tool.Spec{
//		ID:          "echo",
//		Name:        "echo",
//		Description: "Echo input",
//		Parameters:  []tool.Parameter{{Name: "text", Required: true, Instruction: "text to echo"}},
//	}, func(workdir string) tool.Handler {
//		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
//			return tool.OK(args["text"])
//		})
//	})
package tool
