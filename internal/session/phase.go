package session

// Phase is the command lifecycle of the input line
type Phase int

const (
	// PhaseIdle accepts free typing
	PhaseIdle Phase = iota
	// PhaseSuggesting cycles through command suggestions
	PhaseSuggesting
	// PhaseExecuting runs a command; rendering is paused
	PhaseExecuting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSuggesting:
		return "suggestion-navigation"
	case PhaseExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

// Phase returns the current phase
func (s *State) Phase() Phase {
	return s.phase
}

// ShowSuggestions enters suggestion navigation with the first candidate
// selected. No candidates returns the state to idle.
func (s *State) ShowSuggestions(candidates []string) {
	if s.phase == PhaseExecuting {
		return
	}
	if len(candidates) == 0 {
		s.DismissSuggestions()
		return
	}
	s.suggestions = append(s.suggestions[:0], candidates...)
	s.suggestion = 0
	s.phase = PhaseSuggesting
	s.changed()
}

// Suggestions returns the candidates and the selected index
func (s *State) Suggestions() ([]string, int) {
	if s.phase != PhaseSuggesting {
		return nil, -1
	}
	return s.suggestions, s.suggestion
}

// SelectedSuggestion returns the highlighted candidate
func (s *State) SelectedSuggestion() (string, bool) {
	if s.phase != PhaseSuggesting || len(s.suggestions) == 0 {
		return "", false
	}
	return s.suggestions[s.suggestion], true
}

// CycleSuggestion moves the selection, wrapping at both ends
func (s *State) CycleSuggestion(delta int) {
	n := len(s.suggestions)
	if s.phase != PhaseSuggesting || n == 0 {
		return
	}
	s.suggestion = ((s.suggestion+delta)%n + n) % n
	s.changed()
}

// DismissSuggestions leaves suggestion navigation without executing
func (s *State) DismissSuggestions() {
	if s.phase != PhaseSuggesting {
		return
	}
	s.suggestions = s.suggestions[:0]
	s.suggestion = 0
	s.phase = PhaseIdle
	s.changed()
}

// BeginExecuting enters the executing phase. Change notifications are held
// until EndExecuting.
func (s *State) BeginExecuting() {
	s.suggestions = s.suggestions[:0]
	s.suggestion = 0
	s.phase = PhaseExecuting
}

// EndExecuting returns to idle and sends a single notification covering
// everything that changed while executing
func (s *State) EndExecuting() {
	if s.phase != PhaseExecuting {
		return
	}
	s.phase = PhaseIdle
	if s.observer != nil {
		s.observer.StateChanged()
	}
}

// Executing reports whether a command is running
func (s *State) Executing() bool {
	return s.phase == PhaseExecuting
}
