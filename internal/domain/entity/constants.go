package entity

// Product grade constants
const (
	ProductPMS        = "PMS"
	ProductAGO        = "AGO"
	ProductIFO        = "IFO"
	ProductLPG        = "LPG"
	ProductKerosene   = "KEROSENE"
	ProductLubricants = "LUBRICANTS"
)

// ProductGrades lists every recognised product grade
var ProductGrades = []string{
	ProductPMS,
	ProductAGO,
	ProductIFO,
	ProductLPG,
	ProductKerosene,
	ProductLubricants,
}

// Delivery status constants
const (
	DeliveryStatusDraft           = "DRAFT"
	DeliveryStatusPendingApproval = "PENDING_APPROVAL"
	DeliveryStatusApproved        = "APPROVED"
	DeliveryStatusRejected        = "REJECTED"
	DeliveryStatusInTransit       = "IN_TRANSIT"
	DeliveryStatusDelivered       = "DELIVERED"
	DeliveryStatusInvoiced        = "INVOICED"
	DeliveryStatusCancelled       = "CANCELLED"
)

// Workflow type constants
const (
	WorkflowTypeDeliveryApproval        = "DELIVERY_APPROVAL"
	WorkflowTypeSupplierInvoiceApproval = "SUPPLIER_INVOICE_APPROVAL"
	WorkflowTypeCustomerInvoiceApproval = "CUSTOMER_INVOICE_APPROVAL"
	WorkflowTypeBulkInvoiceApproval     = "BULK_INVOICE_APPROVAL"
	WorkflowTypeUPPFClaimApproval       = "UPPF_CLAIM_APPROVAL"
)

// Priority constants shared by workflow instances and notifications
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)
