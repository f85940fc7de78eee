package graph

import "strings"

// parseVerdict extracts a binary judgment from a verifier response. The
// response is expected to start with VERIFIED or NOT_VERIFIED; matching is
// case-insensitive and tolerant of surrounding whitespace. Anything
// without a recognized leading token fails closed to not-verified.
func parseVerdict(response string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(response))
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "NOT_VERIFIED") {
		return false
	}
	if strings.HasPrefix(trimmed, "VERIFIED:") || trimmed == "VERIFIED" || strings.HasPrefix(trimmed, "VERIFIED\n") || strings.HasPrefix(trimmed, "VERIFIED ") {
		return true
	}
	return false
}
