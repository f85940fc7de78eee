package conversation

import "fmt"

// Rough estimation: 4 characters per token.
const charsPerToken = 4

// Keep this many trailing turns when compacting.
const compactTailTurns = 20

// EstimateTokens returns a rough token count for a turn sequence.
func EstimateTokens(turns []Turn) int {
	chars := 0
	for _, t := range turns {
		chars += len(t.Content)
		for _, inv := range t.Invocations {
			chars += len(inv.ToolID)
			for k, v := range inv.Args {
				chars += len(k) + len(v)
			}
		}
	}
	return (chars + charsPerToken - 1) / charsPerToken
}

// ShouldCompact reports whether the history is close enough to the token
// budget that it should be compacted. A 20% headroom is reserved for the
// system prompt and the next response.
func ShouldCompact(turns []Turn, maxTokens int) bool {
	if maxTokens <= 0 {
		return false
	}
	soft := maxTokens * 8 / 10
	return EstimateTokens(turns) > soft
}

// Compact shrinks the history by replacing all but the most recent turns
// with a synthetic summary turn. System turns are always kept. The tail is
// never reordered.
func Compact(turns []Turn, maxTokens int) []Turn {
	if !ShouldCompact(turns, maxTokens) {
		return turns
	}

	var system, conv []Turn
	for _, t := range turns {
		if t.Role == RoleSystem {
			system = append(system, t)
		} else {
			conv = append(conv, t)
		}
	}

	if len(conv) <= compactTailTurns {
		return turns
	}

	dropped := len(conv) - compactTailTurns
	summary := System(fmt.Sprintf("[Previous conversation summary: %d earlier turns elided]", dropped))

	compacted := make([]Turn, 0, len(system)+1+compactTailTurns)
	compacted = append(compacted, system...)
	compacted = append(compacted, summary)
	compacted = append(compacted, conv[dropped:]...)
	return compacted
}
