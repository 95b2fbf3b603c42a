package workflow

import (
	"context"
	"testing"

	domainwf "github.com/uniformhq/uniform-orders/internal/domain/workflow"
)

func TestBuildOrderStateMachine_FullLifecycle(t *testing.T) {
	machine := BuildOrderStateMachine(domainwf.StateAwaitingApproval, TransitionPolicy{POApprovalEnabled: true})
	ctx := context.Background()

	steps := []struct {
		trigger domainwf.Trigger
		want    domainwf.State
	}{
		{domainwf.TriggerApprovePR, domainwf.StateAwaitingFulfilment},
		{domainwf.TriggerLinkPO, domainwf.StateLinkedToPO},
		{domainwf.TriggerReadyForDispatch, domainwf.StateAwaitingDispatch},
		{domainwf.TriggerDispatch, domainwf.StateDispatched},
		{domainwf.TriggerDeliver, domainwf.StateDelivered},
	}

	for _, step := range steps {
		if err := machine.Fire(ctx, step.trigger); err != nil {
			t.Fatalf("Fire(%s) from %s failed: %v", step.trigger, machine.State(), err)
		}
		if machine.State() != step.want {
			t.Fatalf("after %s state = %s, want %s", step.trigger, machine.State(), step.want)
		}
	}

	if !machine.State().IsTerminal() {
		t.Error("DELIVERED should be terminal")
	}
}

func TestBuildOrderStateMachine_POLinkingIsOptional(t *testing.T) {
	machine := BuildOrderStateMachine(domainwf.StateAwaitingFulfilment, TransitionPolicy{})

	if err := machine.Fire(context.Background(), domainwf.TriggerReadyForDispatch); err != nil {
		t.Fatalf("dispatch without PO link failed: %v", err)
	}
	if machine.State() != domainwf.StateAwaitingDispatch {
		t.Errorf("state = %s, want %s", machine.State(), domainwf.StateAwaitingDispatch)
	}
}

func TestBuildOrderStateMachine_POLinkingGatedOnPolicy(t *testing.T) {
	machine := BuildOrderStateMachine(domainwf.StateAwaitingFulfilment, TransitionPolicy{})

	if err := machine.Fire(context.Background(), domainwf.TriggerLinkPO); err == nil {
		t.Fatal("LINK_PO fired without PO approval policy")
	}
	if machine.State() != domainwf.StateAwaitingFulfilment {
		t.Errorf("state moved to %s on a denied transition", machine.State())
	}
}

func TestBuildOrderStateMachine_NoBackwardPath(t *testing.T) {
	machine := BuildOrderStateMachine(domainwf.StateDispatched, TransitionPolicy{})

	if machine.CanFire(domainwf.TriggerApprovePR) {
		t.Error("APPROVE_PR should not be permitted after dispatch")
	}
	if machine.CanFire(domainwf.TriggerReadyForDispatch) {
		t.Error("READY_FOR_DISPATCH should not be permitted after dispatch")
	}
}

func TestNextState(t *testing.T) {
	poEnabled := TransitionPolicy{POApprovalEnabled: true}

	tests := []struct {
		name    string
		from    domainwf.State
		trigger domainwf.Trigger
		policy  TransitionPolicy
		want    domainwf.State
		ok      bool
	}{
		{"approve from awaiting approval", domainwf.StateAwaitingApproval, domainwf.TriggerApprovePR, TransitionPolicy{}, domainwf.StateAwaitingFulfilment, true},
		{"link po with policy", domainwf.StateAwaitingFulfilment, domainwf.TriggerLinkPO, poEnabled, domainwf.StateLinkedToPO, true},
		{"link po denied without policy", domainwf.StateAwaitingFulfilment, domainwf.TriggerLinkPO, TransitionPolicy{}, "", false},
		{"deliver from dispatched", domainwf.StateDispatched, domainwf.TriggerDeliver, TransitionPolicy{}, domainwf.StateDelivered, true},
		{"approve twice", domainwf.StateAwaitingFulfilment, domainwf.TriggerApprovePR, TransitionPolicy{}, "", false},
		{"deliver terminal", domainwf.StateDelivered, domainwf.TriggerDeliver, TransitionPolicy{}, "", false},
		{"invalid state", domainwf.State("BOGUS"), domainwf.TriggerDeliver, TransitionPolicy{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextState(tt.from, tt.trigger, tt.policy)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NextState(%s, %s) = (%s, %v), want (%s, %v)", tt.from, tt.trigger, got, ok, tt.want, tt.ok)
			}
		})
	}
}
