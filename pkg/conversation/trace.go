package conversation

import (
	"fmt"
	"sort"
	"strings"
)

// FormatTrace renders the turn sequence as a deterministic, human-readable
// execution trace for the verifier. Turn order is preserved exactly; system
// turns and the seed task/plan turns are omitted.
func FormatTrace(turns []Turn) string {
	if len(turns) == 0 {
		return "No actions recorded."
	}

	var lines []string
	step := 0

	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			continue

		case RoleAssistant:
			if len(t.Invocations) > 0 {
				for _, inv := range t.Invocations {
					step++
					lines = append(lines, fmt.Sprintf("\n**Step %d: Called tool `%s`**", step, inv.ToolID))
					if len(inv.Args) > 0 {
						lines = append(lines, "  Arguments: "+formatArgs(inv.Args))
					}
				}
				continue
			}
			content := strings.TrimSpace(t.Content)
			if content == "" || strings.HasPrefix(content, "Plan created:") || strings.HasPrefix(content, "Creating improved plan") {
				continue
			}
			step++
			lines = append(lines, fmt.Sprintf("\n**Step %d: Agent reasoning**", step))
			lines = append(lines, "  "+content)

		case RoleTool:
			if t.IsCompletionSignal() {
				lines = append(lines, "  -> Result: Task completion signal received")
			} else {
				lines = append(lines, "  -> Result: "+t.Content)
			}

		case RoleHuman:
			content := strings.TrimSpace(t.Content)
			if strings.HasPrefix(content, "Task:") || strings.HasPrefix(content, "Verification result:") {
				continue
			}
			step++
			lines = append(lines, fmt.Sprintf("\n**Step %d: User input**", step))
			lines = append(lines, "  "+content)
		}
	}

	if len(lines) == 0 {
		return "No significant actions recorded."
	}
	return strings.Join(lines, "\n")
}

// formatArgs renders invocation arguments with stable key order.
func formatArgs(args map[string]string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, args[k]))
	}
	return strings.Join(parts, ", ")
}
