package workflow

// State represents a stage in the order lifecycle
type State string

const (
	StateAwaitingApproval   State = "AWAITING_APPROVAL"
	StateAwaitingFulfilment State = "AWAITING_FULFILMENT"
	StateLinkedToPO         State = "LINKED_TO_PO"
	StateAwaitingDispatch   State = "AWAITING_DISPATCH"
	StateDispatched         State = "DISPATCHED"
	StateDelivered          State = "DELIVERED"
)

var validStates = map[State]bool{
	StateAwaitingApproval:   true,
	StateAwaitingFulfilment: true,
	StateLinkedToPO:         true,
	StateAwaitingDispatch:   true,
	StateDispatched:         true,
	StateDelivered:          true,
}

var terminalStates = map[State]bool{
	StateDelivered: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid order lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
