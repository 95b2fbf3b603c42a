package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateAwaitingApproval, false},
		{StateAwaitingFulfilment, false},
		{StateLinkedToPO, false},
		{StateAwaitingDispatch, false},
		{StateDispatched, false},
		{StateDelivered, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"awaiting approval", StateAwaitingApproval, true},
		{"delivered", StateDelivered, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if got := StateAwaitingApproval.String(); got != "AWAITING_APPROVAL" {
		t.Errorf("State.String() = %v, want AWAITING_APPROVAL", got)
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerApprovePR.String(); got != "APPROVE_PR" {
		t.Errorf("Trigger.String() = %v, want APPROVE_PR", got)
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateAwaitingApproval)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	// Configure same state again should return same config
	config2 := builder.Configure(StateAwaitingApproval)
	if config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("INVALID"))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingApproval).
		Permit(TriggerApprovePR, StateAwaitingFulfilment)

	machine := builder.Build(StateAwaitingApproval)

	if !machine.CanFire(TriggerApprovePR) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	if err := machine.Fire(context.Background(), TriggerApprovePR); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StateAwaitingFulfilment {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateAwaitingFulfilment)
	}
}

func TestStateConfiguration_PermitIf_GuardPasses(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingFulfilment).
		PermitIf(TriggerLinkPO, StateLinkedToPO, func(ctx context.Context) bool {
			return true
		})

	machine := builder.Build(StateAwaitingFulfilment)

	if err := machine.Fire(context.Background(), TriggerLinkPO); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StateLinkedToPO {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateLinkedToPO)
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingFulfilment).
		PermitIf(TriggerLinkPO, StateLinkedToPO, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(StateAwaitingFulfilment)

	err := machine.Fire(context.Background(), TriggerLinkPO)
	if err == nil {
		t.Fatal("Fire() should fail when guard fails")
	}

	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}

	if machine.State() != StateAwaitingFulfilment {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateAwaitingFulfilment, machine.State())
	}
}

func TestStateConfiguration_PermitPanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	builder.Configure(StateAwaitingApproval).Permit(TriggerApprovePR, State("INVALID"))
}

func TestStateMachine_CanFire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingApproval).
		Permit(TriggerApprovePR, StateAwaitingFulfilment)

	machine := builder.Build(StateAwaitingApproval)

	tests := []struct {
		trigger  Trigger
		expected bool
	}{
		{TriggerApprovePR, true},
		{TriggerDispatch, false},
		{TriggerDeliver, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.trigger), func(t *testing.T) {
			if got := machine.CanFire(tt.trigger); got != tt.expected {
				t.Errorf("CanFire() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingApproval).
		Permit(TriggerApprovePR, StateAwaitingFulfilment)

	machine := builder.Build(StateAwaitingApproval)

	err := machine.Fire(context.Background(), TriggerDeliver)
	if err == nil {
		t.Fatal("Fire() should fail for invalid transition")
	}

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}

	if machine.State() != StateAwaitingApproval {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateAwaitingApproval, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	builder := NewBuilder()
	machine := builder.Build(StateDelivered)

	err := machine.Fire(context.Background(), TriggerDeliver)
	if err == nil {
		t.Fatal("Fire() should fail when state has no configuration")
	}

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_BuiltMachineIsImmutable(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingApproval).
		Permit(TriggerApprovePR, StateAwaitingFulfilment)

	machine := builder.Build(StateAwaitingApproval)

	// Reconfiguring the builder must not affect the built machine
	builder.Configure(StateAwaitingApproval).
		Permit(TriggerDeliver, StateDelivered)

	if machine.CanFire(TriggerDeliver) {
		t.Error("built machine picked up configuration added after Build()")
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingFulfilment).
		Permit(TriggerLinkPO, StateLinkedToPO).
		Permit(TriggerReadyForDispatch, StateAwaitingDispatch)

	machine := builder.Build(StateAwaitingFulfilment)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 2 {
		t.Fatalf("PermittedTriggers() returned %d triggers, want 2", len(triggers))
	}

	found := map[Trigger]bool{}
	for _, trigger := range triggers {
		found[trigger] = true
	}
	if !found[TriggerLinkPO] || !found[TriggerReadyForDispatch] {
		t.Errorf("PermittedTriggers() = %v", triggers)
	}
}
