package workflow

// State represents a workflow instance state in the approval lifecycle
type State string

const (
	StatePending    State = "PENDING"
	StateInProgress State = "IN_PROGRESS"
	StateApproved   State = "APPROVED"
	StateRejected   State = "REJECTED"
	StateEscalated  State = "ESCALATED"
	StateTimeout    State = "TIMEOUT"
	StateCancelled  State = "CANCELLED"
)

var validStates = map[State]bool{
	StatePending:    true,
	StateInProgress: true,
	StateApproved:   true,
	StateRejected:   true,
	StateEscalated:  true,
	StateTimeout:    true,
	StateCancelled:  true,
}

// Every state except PENDING and IN_PROGRESS is terminal.
var terminalStates = map[State]bool{
	StateApproved:  true,
	StateRejected:  true,
	StateEscalated: true,
	StateTimeout:   true,
	StateCancelled: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a recognised workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
