package tool

import "strings"

// ParseInvocation scans free text for an embedded tool call of the form
//
//	<tool_id>
//	<param>value</param>
//	</tool_id>
//
// where tool_id matches a tool known to the given predicate. The first
// matching top-level tag wins. Parameter values are taken literally (no
// escaping, no nesting) with only the outermost whitespace trimmed.
//
// Returns (zero, false) when no recognized tool tag is present, so callers
// can treat the text as pure reasoning. Parameter validation happens later,
// at execution time.
func ParseInvocation(text string, known func(id string) bool) (Invocation, bool) {
	rest := text

	for {
		name, body, pos, ok := nextTag(rest)
		if !ok {
			return Invocation{}, false
		}
		if known == nil || known(name) {
			return NewInvocation(name, parseParams(body)), true
		}
		// Not a tool tag; keep scanning after the opening tag.
		rest = rest[pos+len(name)+2:]
	}
}

// parseParams extracts one level of <name>value</name> pairs from a tool
// tag body. Later duplicates of the same parameter are ignored.
func parseParams(body string) map[string]string {
	args := map[string]string{}
	rest := body

	for {
		name, value, pos, ok := nextTag(rest)
		if !ok {
			return args
		}
		if _, seen := args[name]; !seen {
			args[name] = strings.TrimSpace(value)
		}
		rest = rest[pos+len(name)+2:]
		end := strings.Index(rest, "</"+name+">")
		rest = rest[end+len(name)+3:]
	}
}

// nextTag finds the first well-formed <name>...</name> pair in s. It
// returns the tag name, the enclosed content, and the index of the opening
// '<'. Tags without a matching close are skipped.
func nextTag(s string) (name, content string, pos int, ok bool) {
	searched := 0
	for {
		rel := strings.IndexByte(s[searched:], '<')
		if rel < 0 {
			return "", "", 0, false
		}
		start := searched + rel

		nameEnd := start + 1
		for nameEnd < len(s) && isTagNameByte(s[nameEnd]) {
			nameEnd++
		}
		if nameEnd == start+1 || nameEnd >= len(s) || s[nameEnd] != '>' {
			searched = start + 1
			continue
		}

		candidate := s[start+1 : nameEnd]
		closing := "</" + candidate + ">"
		closeIdx := strings.Index(s[nameEnd+1:], closing)
		if closeIdx < 0 {
			searched = start + 1
			continue
		}

		return candidate, s[nameEnd+1 : nameEnd+1+closeIdx], start, true
	}
}

func isTagNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
