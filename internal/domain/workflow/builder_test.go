package workflow

import (
	"context"
	"errors"
	"testing"
)

func newTestBuilder() Builder {
	b := NewBuilder()
	b.Configure(StatePending).
		Permit(TriggerStart, StateInProgress).
		Permit(TriggerCancel, StateCancelled)
	b.Configure(StateInProgress).
		Permit(TriggerApprove, StateApproved).
		PermitReentry(TriggerDelegate).
		Permit(TriggerReject, StateRejected)
	return b
}

func TestStateMachineFire(t *testing.T) {
	tests := []struct {
		name         string
		initialState State
		trigger      Trigger
		wantState    State
		wantError    bool
	}{
		{
			name:         "PENDING -> IN_PROGRESS on START",
			initialState: StatePending,
			trigger:      TriggerStart,
			wantState:    StateInProgress,
			wantError:    false,
		},
		{
			name:         "PENDING -> CANCELLED on CANCEL",
			initialState: StatePending,
			trigger:      TriggerCancel,
			wantState:    StateCancelled,
			wantError:    false,
		},
		{
			name:         "IN_PROGRESS -> APPROVED on APPROVE",
			initialState: StateInProgress,
			trigger:      TriggerApprove,
			wantState:    StateApproved,
			wantError:    false,
		},
		{
			name:         "IN_PROGRESS reentry on DELEGATE",
			initialState: StateInProgress,
			trigger:      TriggerDelegate,
			wantState:    StateInProgress,
			wantError:    false,
		},
		{
			name:         "invalid trigger from PENDING",
			initialState: StatePending,
			trigger:      TriggerApprove,
			wantState:    StatePending,
			wantError:    true,
		},
		{
			name:         "no transitions out of terminal state",
			initialState: StateApproved,
			trigger:      TriggerStart,
			wantState:    StateApproved,
			wantError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := newTestBuilder().Build(tt.initialState)

			err := machine.Fire(context.Background(), tt.trigger)

			if tt.wantError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if machine.State() != tt.wantState {
				t.Errorf("expected state %s, got %s", tt.wantState, machine.State())
			}
		})
	}
}

func TestStateMachineInvalidTransitionError(t *testing.T) {
	machine := newTestBuilder().Build(StatePending)

	err := machine.Fire(context.Background(), TriggerReject)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStateMachineGuard(t *testing.T) {
	allowed := false

	b := NewBuilder()
	b.Configure(StatePending).
		PermitIf(TriggerStart, StateInProgress, func(ctx context.Context) bool { return allowed })
	machine := b.Build(StatePending)

	err := machine.Fire(context.Background(), TriggerStart)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("expected ErrGuardFailed, got %v", err)
	}
	if machine.State() != StatePending {
		t.Errorf("state changed despite failing guard: %s", machine.State())
	}

	allowed = true
	if err := machine.Fire(context.Background(), TriggerStart); err != nil {
		t.Errorf("unexpected error with passing guard: %v", err)
	}
	if machine.State() != StateInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", machine.State())
	}
}

func TestStateMachineCanFire(t *testing.T) {
	machine := newTestBuilder().Build(StatePending)

	if !machine.CanFire(TriggerStart) {
		t.Error("expected CanFire(START) = true from PENDING")
	}
	if machine.CanFire(TriggerApprove) {
		t.Error("expected CanFire(APPROVE) = false from PENDING")
	}
}

func TestStateMachinePermittedTriggers(t *testing.T) {
	machine := newTestBuilder().Build(StateInProgress)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 3 {
		t.Fatalf("expected 3 permitted triggers, got %d: %v", len(triggers), triggers)
	}
}

func TestBuildIsolatesMachines(t *testing.T) {
	b := newTestBuilder()

	first := b.Build(StatePending)
	second := b.Build(StatePending)

	if err := first.Fire(context.Background(), TriggerStart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.State() != StatePending {
		t.Errorf("machine state leaked between Build calls: %s", second.State())
	}
}

func TestStateIsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		terminal bool
	}{
		{StatePending, false},
		{StateInProgress, false},
		{StateApproved, true},
		{StateRejected, true},
		{StateEscalated, true},
		{StateTimeout, true},
		{StateCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestConfigureRejectsInvalidState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid state")
		}
	}()
	NewBuilder().Configure(State("UNKNOWN"))
}
