package approval

import (
	"github.com/omcsuite/daily-delivery/internal/domain/workflow"
)

// newApprovalBuilder configures the approval lifecycle. Delegation,
// information requests and multi-step advances keep the instance
// IN_PROGRESS; every other trigger moves it to a terminal state.
func newApprovalBuilder() workflow.Builder {
	b := workflow.NewBuilder()

	b.Configure(workflow.StatePending).
		Permit(workflow.TriggerStart, workflow.StateInProgress).
		Permit(workflow.TriggerCancel, workflow.StateCancelled).
		Permit(workflow.TriggerTimeout, workflow.StateTimeout)

	b.Configure(workflow.StateInProgress).
		Permit(workflow.TriggerApprove, workflow.StateApproved).
		PermitReentry(workflow.TriggerAdvance).
		Permit(workflow.TriggerReject, workflow.StateRejected).
		PermitReentry(workflow.TriggerDelegate).
		PermitReentry(workflow.TriggerRequestInfo).
		Permit(workflow.TriggerEscalate, workflow.StateEscalated).
		Permit(workflow.TriggerTimeout, workflow.StateTimeout).
		Permit(workflow.TriggerCancel, workflow.StateCancelled)

	return b
}

// machineFor builds a state machine positioned at the instance's current
// status.
func machineFor(status string) workflow.StateMachine {
	return newApprovalBuilder().Build(workflow.State(status))
}
