package workflow

import (
	"context"

	domainwf "github.com/uniformhq/uniform-orders/internal/domain/workflow"
)

// TransitionPolicy carries the company policy bits the lifecycle graph is
// conditioned on. PO linking is policy-gated; the zero value denies it,
// which is the safe default for callers that never fire LINK_PO.
type TransitionPolicy struct {
	POApprovalEnabled bool
}

// BuildOrderStateMachine creates a state machine configured for the order
// fulfilment lifecycle under the given company policy. The same graph
// applies to standalone orders and to each split of a multi-vendor order;
// a split parent's displayed status is a view over its children and never
// fired through the machine directly.
func BuildOrderStateMachine(initialState domainwf.State, policy TransitionPolicy) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	poApproval := func(ctx context.Context) bool { return policy.POApprovalEnabled }

	// AWAITING_APPROVAL: a site admin supplies PR number and date
	builder.Configure(domainwf.StateAwaitingApproval).
		Permit(domainwf.TriggerApprovePR, domainwf.StateAwaitingFulfilment)

	// AWAITING_FULFILMENT: grouped into a PO by a company admin when the
	// company uses PO approval, otherwise handed straight to the vendor
	builder.Configure(domainwf.StateAwaitingFulfilment).
		PermitIf(domainwf.TriggerLinkPO, domainwf.StateLinkedToPO, poApproval).
		Permit(domainwf.TriggerReadyForDispatch, domainwf.StateAwaitingDispatch)

	// LINKED_TO_PO: fulfilment proceeds once the vendor picks the order up
	builder.Configure(domainwf.StateLinkedToPO).
		Permit(domainwf.TriggerReadyForDispatch, domainwf.StateAwaitingDispatch)

	// AWAITING_DISPATCH
	builder.Configure(domainwf.StateAwaitingDispatch).
		Permit(domainwf.TriggerDispatch, domainwf.StateDispatched)

	// DISPATCHED
	builder.Configure(domainwf.StateDispatched).
		Permit(domainwf.TriggerDeliver, domainwf.StateDelivered)

	// DELIVERED is terminal - no outgoing transitions

	return builder.Build(initialState)
}

// NextState returns the state an order in the given state would move to when
// the trigger fires under the policy, and whether the transition is
// permitted. Used by services to drive conditional storage updates without
// mutating a machine.
func NextState(from domainwf.State, trigger domainwf.Trigger, policy TransitionPolicy) (domainwf.State, bool) {
	if !from.IsValid() {
		return "", false
	}
	machine := BuildOrderStateMachine(from, policy)
	if !machine.CanFire(trigger) {
		return "", false
	}
	if err := machine.Fire(context.Background(), trigger); err != nil {
		return "", false
	}
	return machine.State(), true
}
