package conversation

// State is the orchestration record threaded through every node. Nodes
// return partial Updates that are merged in: turns are appended, scalars
// overwritten. Task is immutable after creation.
type State struct {
	Turns            []Turn  `json:"turns"`
	Task             string  `json:"task"`
	Plan             string  `json:"plan"`
	PlanIteration    int     `json:"plan_iteration"`
	FinalAnswer      *string `json:"final_answer,omitempty"`
	IsVerified       bool    `json:"is_verified"`
	MaxContextTokens int     `json:"max_context_tokens"`
}

// NewState creates the initial state for a run.
func NewState(task string, maxContextTokens int) *State {
	return &State{
		Task:             task,
		Plan:             "",
		PlanIteration:    0,
		FinalAnswer:      nil,
		IsVerified:       false,
		MaxContextTokens: maxContextTokens,
	}
}

// Update is a partial state mutation produced by one node.
type Update struct {
	Turns            []Turn
	Plan             *string
	PlanIteration    *int
	FinalAnswer      *string
	ClearFinalAnswer bool
	IsVerified       *bool
}

// Apply merges an update into the state. Turns are appended in order;
// scalar fields are overwritten only when set.
func (s *State) Apply(u Update) {
	s.Turns = append(s.Turns, u.Turns...)
	if u.Plan != nil {
		s.Plan = *u.Plan
	}
	if u.PlanIteration != nil {
		s.PlanIteration = *u.PlanIteration
	}
	if u.ClearFinalAnswer {
		s.FinalAnswer = nil
	} else if u.FinalAnswer != nil {
		s.FinalAnswer = u.FinalAnswer
	}
	if u.IsVerified != nil {
		s.IsVerified = *u.IsVerified
	}
}

// LastTurn returns the most recent turn, or a zero Turn when empty.
func (s *State) LastTurn() (Turn, bool) {
	if len(s.Turns) == 0 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

// LatestCompletion searches backwards for the most recent completion-signal
// turn and returns its answer.
func (s *State) LatestCompletion() (string, bool) {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].IsCompletionSignal() {
			return s.Turns[i].CompletionAnswer(), true
		}
	}
	return "", false
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
