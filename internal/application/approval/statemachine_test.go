package approval

import (
	"context"
	"testing"

	"github.com/omcsuite/daily-delivery/internal/domain/workflow"
)

func TestApprovalLifecycleTransitions(t *testing.T) {
	tests := []struct {
		name      string
		from      workflow.State
		trigger   workflow.Trigger
		wantState workflow.State
		wantError bool
	}{
		{"start", workflow.StatePending, workflow.TriggerStart, workflow.StateInProgress, false},
		{"cancel while pending", workflow.StatePending, workflow.TriggerCancel, workflow.StateCancelled, false},
		{"timeout while pending", workflow.StatePending, workflow.TriggerTimeout, workflow.StateTimeout, false},
		{"approve", workflow.StateInProgress, workflow.TriggerApprove, workflow.StateApproved, false},
		{"advance keeps in progress", workflow.StateInProgress, workflow.TriggerAdvance, workflow.StateInProgress, false},
		{"reject", workflow.StateInProgress, workflow.TriggerReject, workflow.StateRejected, false},
		{"delegate keeps in progress", workflow.StateInProgress, workflow.TriggerDelegate, workflow.StateInProgress, false},
		{"request info keeps in progress", workflow.StateInProgress, workflow.TriggerRequestInfo, workflow.StateInProgress, false},
		{"escalate", workflow.StateInProgress, workflow.TriggerEscalate, workflow.StateEscalated, false},
		{"timeout while in progress", workflow.StateInProgress, workflow.TriggerTimeout, workflow.StateTimeout, false},
		{"cancel while in progress", workflow.StateInProgress, workflow.TriggerCancel, workflow.StateCancelled, false},
		{"approve while pending", workflow.StatePending, workflow.TriggerApprove, workflow.StatePending, true},
		{"no transitions from approved", workflow.StateApproved, workflow.TriggerReject, workflow.StateApproved, true},
		{"no transitions from rejected", workflow.StateRejected, workflow.TriggerStart, workflow.StateRejected, true},
		{"no transitions from cancelled", workflow.StateCancelled, workflow.TriggerStart, workflow.StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := machineFor(tt.from.String())
			err := machine.Fire(context.Background(), tt.trigger)

			if tt.wantError && err == nil {
				t.Fatalf("Fire(%s) from %s: expected error", tt.trigger, tt.from)
			}
			if !tt.wantError && err != nil {
				t.Fatalf("Fire(%s) from %s: %v", tt.trigger, tt.from, err)
			}
			if machine.State() != tt.wantState {
				t.Errorf("state = %s, want %s", machine.State(), tt.wantState)
			}
		})
	}
}

func TestMachineForIndependentInstances(t *testing.T) {
	first := machineFor(workflow.StateInProgress.String())
	second := machineFor(workflow.StateInProgress.String())

	if err := first.Fire(context.Background(), workflow.TriggerApprove); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if second.State() != workflow.StateInProgress {
		t.Errorf("second machine moved with the first: %s", second.State())
	}
}
