package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerStart       Trigger = "START"
	TriggerApprove     Trigger = "APPROVE"
	TriggerAdvance     Trigger = "ADVANCE"
	TriggerReject      Trigger = "REJECT"
	TriggerDelegate    Trigger = "DELEGATE"
	TriggerRequestInfo Trigger = "REQUEST_INFO"
	TriggerEscalate    Trigger = "ESCALATE"
	TriggerTimeout     Trigger = "TIMEOUT"
	TriggerCancel      Trigger = "CANCEL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
