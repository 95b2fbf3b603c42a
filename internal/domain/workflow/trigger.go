package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	// TriggerApprovePR is fired by a site admin supplying PR number and date.
	TriggerApprovePR Trigger = "APPROVE_PR"

	// TriggerLinkPO is fired by a company admin grouping approved PRs into a PO.
	TriggerLinkPO Trigger = "LINK_PO"

	// TriggerReadyForDispatch marks an order handed to the vendor for picking.
	TriggerReadyForDispatch Trigger = "READY_FOR_DISPATCH"

	// TriggerDispatch marks an order shipped by the vendor.
	TriggerDispatch Trigger = "DISPATCH"

	// TriggerDeliver marks an order received by the employee.
	TriggerDeliver Trigger = "DELIVER"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
