package port

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by collaborator adapters when the remote
// service cannot be reached. Callers that tolerate degradation treat it as a
// pass; callers that do not surface it.
var ErrUnavailable = errors.New("external service unavailable")

// PermitValidation is the outcome of an NPA permit check
type PermitValidation struct {
	IsValid     bool
	PermitType  string
	ExpiryDate  *time.Time
	Restriction string
}

// CustomsValidation is the outcome of a customs entry check
type CustomsValidation struct {
	IsValid    bool
	EntryDate  *time.Time
	DutyAmount float64
}

// ComplianceService validates regulatory document numbers with the
// responsible authority systems
type ComplianceService interface {
	ValidateNPAPermit(ctx context.Context, permitNumber, productType string, quantity float64) (*PermitValidation, error)
	ValidateCustomsEntry(ctx context.Context, entryNumber string) (*CustomsValidation, error)
}

// Approver describes a resolved approver identity
type Approver struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// DirectoryService resolves approver identity and authorization
type DirectoryService interface {
	GetApprover(ctx context.Context, approverID string) (*Approver, error)
	IsAuthorizedForStep(ctx context.Context, approverID, workflowID, stepID string) (bool, error)
}

// ApprovalRequestNotice is sent to the approvers of a newly reached step
type ApprovalRequestNotice struct {
	InstanceID   string
	WorkflowType string
	RequestedBy  string
	Priority     string
	SLADeadline  time.Time
	ApproverIDs  []string
	Amount       float64
	Currency     string
}

// ApprovalActionNotice reports a processed approval action
type ApprovalActionNotice struct {
	InstanceID    string
	Action        string
	ApproverID    string
	ApproverName  string
	Comments      string
	CurrentStatus string
}

// NotificationService delivers approval notifications. Failures are logged
// and swallowed by callers; a notification must never block a state
// transition.
type NotificationService interface {
	SendApprovalRequest(ctx context.Context, notice *ApprovalRequestNotice) error
	SendApprovalAction(ctx context.Context, notice *ApprovalActionNotice) error
}

// MarketDataService supplies reference prices and customer credit checks for
// the best-effort external validations. Implementations degrade to
// ErrUnavailable rather than guessing.
type MarketDataService interface {
	ReferencePrice(ctx context.Context, productType string) (float64, error)
	CheckCreditLimit(ctx context.Context, customerID string, amount float64) (bool, error)
}

// FleetService answers vehicle/driver pairing plausibility checks
type FleetService interface {
	ValidateVehicleDriver(ctx context.Context, vehicleRegistration, driverRef string) (bool, error)
}
