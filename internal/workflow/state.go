package workflow

import "github.com/ppiankov/memodraft/internal/model"

// State is a revision workflow state
type State string

const (
	StateDrafting         State = "drafting"
	StateAwaitingDecision State = "awaiting_decision"
	StateRevising         State = "revising"
	StateApproved         State = "approved"
	StateMaxCyclesReached State = "max_cycles_reached"
	StateUnknown          State = "unknown"
)

// Terminal reports whether the run ends in s
func (s State) Terminal() bool {
	switch s {
	case StateApproved, StateMaxCyclesReached, StateUnknown:
		return true
	}
	return false
}

// finalDecision maps a terminal state to its persisted decision
func finalDecision(s State) model.FinalDecision {
	switch s {
	case StateApproved:
		return model.FinalApproved
	case StateMaxCyclesReached:
		return model.FinalMaxCyclesReached
	default:
		return model.FinalUnknown
	}
}

// Event describes one state transition
type Event struct {
	RunID    string
	State    State
	Cycle    int                // Cycle number of the draft being produced or reviewed
	Evidence int                // Size of the working evidence set
	Draft    *model.DraftResult // Set on entry to awaiting_decision
	Decision *model.Decision    // Set on entry to revising and terminal states reached by a decision
	EditKind string             // content or style, set on entry to revising
}

// Observer receives every state transition of a run
type Observer func(Event)
