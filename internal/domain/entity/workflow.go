package entity

import "time"

// WorkflowInstance is one approval request in flight. It is the only mutable
// aggregate in the workflow subsystem; every approval action reloads it,
// mutates it in memory and persists it back.
type WorkflowInstance struct {
	InstanceID         string                 `json:"instance_id"`
	WorkflowID         string                 `json:"workflow_id"`
	WorkflowType       string                 `json:"workflow_type"`
	SourceDocumentID   string                 `json:"source_document_id"`
	SourceDocumentType string                 `json:"source_document_type"`
	RequestedBy        string                 `json:"requested_by"`
	RequestedAt        time.Time              `json:"requested_at"`
	CurrentStepID      string                 `json:"current_step_id"`
	CurrentStepOrder   int                    `json:"current_step_order"`
	Status             string                 `json:"status"`
	Priority           string                 `json:"priority"`
	ApprovalHistory    []ApprovalHistoryEntry `json:"approval_history"`
	Attachments        []WorkflowAttachment   `json:"attachments"`
	Metadata           WorkflowMetadata       `json:"metadata"`
	SLADeadline        time.Time              `json:"sla_deadline"`
	EscalationLevel    int                    `json:"escalation_level"`
	ComplianceStatus   ComplianceStatus       `json:"compliance_status"`

	// DelegatedApproverID grants an approver rights on the current step in
	// addition to the directory assignment. It is cleared when the step
	// completes.
	DelegatedApproverID string `json:"delegated_approver_id,omitempty"`

	// Version supports optimistic concurrency at the persistence boundary.
	Version int64 `json:"version"`
}

// Approval history actions
const (
	HistoryActionApproved       = "APPROVED"
	HistoryActionRejected       = "REJECTED"
	HistoryActionDelegated      = "DELEGATED"
	HistoryActionInfoRequested  = "INFO_REQUESTED"
	HistoryActionEscalated      = "ESCALATED"
	HistoryActionTimeout        = "TIMEOUT"
	HistoryActionCancelled      = "CANCELLED"
	HistoryActionSystemApproved = "SYSTEM_APPROVED"
)

// ApprovalHistoryEntry is one append-only audit record on an instance
type ApprovalHistoryEntry struct {
	EntryID            string    `json:"entry_id"`
	StepID             string    `json:"step_id"`
	StepName           string    `json:"step_name"`
	ApproverID         string    `json:"approver_id"`
	ApproverName       string    `json:"approver_name"`
	Action             string    `json:"action"`
	ActionDate         time.Time `json:"action_date"`
	Comments           string    `json:"comments"`
	Attachments        []string  `json:"attachments,omitempty"`
	DelegatedTo        string    `json:"delegated_to,omitempty"`
	OriginalApproverID string    `json:"original_approver_id,omitempty"`
}

// WorkflowAttachment is a supporting document on an instance
type WorkflowAttachment struct {
	AttachmentID       string    `json:"attachment_id"`
	FileName           string    `json:"file_name"`
	FileType           string    `json:"file_type"`
	FileSize           int64     `json:"file_size"`
	UploadedBy         string    `json:"uploaded_by"`
	UploadedAt         time.Time `json:"uploaded_at"`
	URL                string    `json:"url"`
	IsRequired         bool      `json:"is_required"`
	ComplianceDocument bool      `json:"compliance_document"`
}

// WorkflowMetadata carries the business data the approval decision is made on
type WorkflowMetadata struct {
	TenantID              string          `json:"tenant_id"`
	Amount                float64         `json:"amount,omitempty"`
	Currency              string          `json:"currency,omitempty"`
	CustomerID            string          `json:"customer_id,omitempty"`
	CustomerName          string          `json:"customer_name,omitempty"`
	SupplierID            string          `json:"supplier_id,omitempty"`
	SupplierName          string          `json:"supplier_name,omitempty"`
	ProductType           string          `json:"product_type,omitempty"`
	DeliveryDate          *time.Time      `json:"delivery_date,omitempty"`
	BusinessUnit          string          `json:"business_unit,omitempty"`
	CostCenter            string          `json:"cost_center,omitempty"`
	UrgentRequest         bool            `json:"urgent_request"`
	BusinessJustification string          `json:"business_justification,omitempty"`
	RiskAssessment        *RiskAssessment `json:"risk_assessment,omitempty"`
	RegulatoryData        *RegulatoryData `json:"regulatory_data,omitempty"`
}

// Risk levels
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// Risk factor types
const (
	RiskFactorCredit      = "CREDIT_RISK"
	RiskFactorCompliance  = "COMPLIANCE_RISK"
	RiskFactorOperational = "OPERATIONAL_RISK"
	RiskFactorFinancial   = "FINANCIAL_RISK"
)

// RiskAssessment feeds workflow metadata; it never drives state transitions
type RiskAssessment struct {
	RiskLevel         string       `json:"risk_level"`
	RiskScore         int          `json:"risk_score"`
	RiskFactors       []RiskFactor `json:"risk_factors"`
	MitigationActions []string     `json:"mitigation_actions"`
}

// RiskFactor is a single contributor to a risk assessment
type RiskFactor struct {
	FactorType  string  `json:"factor_type"`
	FactorName  string  `json:"factor_name"`
	Severity    string  `json:"severity"`
	Impact      string  `json:"impact"`
	Probability float64 `json:"probability"`
}

// RegulatoryData is the compliance snapshot captured at submission
type RegulatoryData struct {
	NPAPermitNumber     string  `json:"npa_permit_number,omitempty"`
	CustomsEntryNumber  string  `json:"customs_entry_number,omitempty"`
	UPPFEligible        bool    `json:"uppf_eligible"`
	PetroleumTaxAmount  float64 `json:"petroleum_tax_amount"`
	TotalTaxes          float64 `json:"total_taxes"`
	ComplianceScore     int     `json:"compliance_score"`
	EnvironmentalImpact string  `json:"environmental_impact"`
}

// ComplianceStatus summarises document completeness on an instance
type ComplianceStatus struct {
	IsCompliant          bool       `json:"is_compliant"`
	NPAPermitValid       bool       `json:"npa_permit_valid"`
	CustomsEntryValid    bool       `json:"customs_entry_valid"`
	TaxCalculationsValid bool       `json:"tax_calculations_valid"`
	ComplianceScore      int        `json:"compliance_score"`
	MissingDocuments     []string   `json:"missing_documents"`
	CheckedBy            string     `json:"compliance_checked_by,omitempty"`
	CheckedAt            *time.Time `json:"compliance_checked_at,omitempty"`
}
