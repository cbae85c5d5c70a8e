package event

// Type identifies the type of domain event
type Type string

const (
	TypeValidationCompleted      Type = "validation.completed"
	TypeValidationBatchCompleted Type = "validation.batch_completed"
	TypeSubmittedForApproval     Type = "delivery.submitted_for_approval"
	TypeAutoApproved             Type = "delivery.auto_approved"
	TypeBulkInvoiceSubmitted     Type = "bulk_invoice.submitted_for_approval"
	TypeApprovalActionProcessed  Type = "approval_action.processed"
	TypeBulkApprovalCompleted    Type = "bulk_approval.completed"
	TypeInstanceCancelled        Type = "workflow_instance.cancelled"
	TypeInstanceEscalated        Type = "workflow_instance.escalated"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeValidationCompleted,
		TypeValidationBatchCompleted,
		TypeSubmittedForApproval,
		TypeAutoApproved,
		TypeBulkInvoiceSubmitted,
		TypeApprovalActionProcessed,
		TypeBulkApprovalCompleted,
		TypeInstanceCancelled,
		TypeInstanceEscalated:
		return true
	default:
		return false
	}
}
