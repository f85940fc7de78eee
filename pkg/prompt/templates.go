package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Node names owning a prompt template.
const (
	NodePlanner  = "planner"
	NodeAgent    = "agent"
	NodeVerifier = "verifier"
	NodeReplan   = "replan"
)

// requiredPlaceholders lists the placeholders an explicit template must
// contain for each node.
var requiredPlaceholders = map[string][]string{
	NodePlanner:  {"task", "tool_instructions"},
	NodeAgent:    {"task", "plan", "tool_instructions"},
	NodeVerifier: {"task", "answer", "trace_section", "tool_instructions"},
	NodeReplan:   {"task", "previous_plan", "verification_feedback", "tool_instructions"},
}

// knownPlaceholders is the union across nodes, used to distinguish explicit
// templates from plain auto-wrap text.
var knownPlaceholders = func() []string {
	seen := map[string]bool{}
	var all []string
	for _, names := range requiredPlaceholders {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				all = append(all, n)
			}
		}
	}
	sort.Strings(all)
	return all
}()

// Templates holds optional custom prompt templates per node. An empty
// field selects the built-in prompt. A non-empty value is either plain
// text (auto-wrap mode: dynamic sections are added around it) or an
// explicit template containing {placeholder} markers, in which case every
// placeholder required by that node must be present.
type Templates struct {
	Planner  string
	Agent    string
	Verifier string
	Replan   string
}

// MissingPlaceholderError reports an explicit template that lacks one or
// more required placeholders. It is a configuration-time error; runs never
// start with an invalid template.
type MissingPlaceholderError struct {
	Node    string
	Missing []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("%s template is missing required placeholder(s): %s",
		e.Node, strings.Join(e.Missing, ", "))
}

// Validate checks every custom template. Plain-text templates always pass;
// explicit templates must contain the full required set for their node.
func (t Templates) Validate() error {
	for node, text := range t.byNode() {
		if err := validateTemplate(node, text); err != nil {
			return err
		}
	}
	return nil
}

func (t Templates) byNode() map[string]string {
	return map[string]string{
		NodePlanner:  t.Planner,
		NodeAgent:    t.Agent,
		NodeVerifier: t.Verifier,
		NodeReplan:   t.Replan,
	}
}

// forNode returns the custom template text for a node ("" means built-in).
func (t Templates) forNode(node string) string {
	return t.byNode()[node]
}

func validateTemplate(node, text string) error {
	if text == "" || !isExplicit(text) {
		return nil
	}

	var missing []string
	for _, name := range requiredPlaceholders[node] {
		if !strings.Contains(text, placeholder(name)) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingPlaceholderError{Node: node, Missing: missing}
	}
	return nil
}

// isExplicit reports whether the text contains any known placeholder,
// selecting explicit-template mode over auto-wrap mode.
func isExplicit(text string) bool {
	for _, name := range knownPlaceholders {
		if strings.Contains(text, placeholder(name)) {
			return true
		}
	}
	return false
}

func placeholder(name string) string {
	return "{" + name + "}"
}

// substitute replaces every {name} marker with its value, verbatim.
func substitute(text string, values map[string]string) string {
	for name, value := range values {
		text = strings.ReplaceAll(text, placeholder(name), value)
	}
	return text
}
