package http

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omcsuite/daily-delivery/internal/application/approval"
	"github.com/omcsuite/daily-delivery/internal/application/validation"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	domain "github.com/omcsuite/daily-delivery/internal/domain/validation"
	"github.com/omcsuite/daily-delivery/internal/report"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	orchestrator *validation.Orchestrator
	engine       approval.Engine
	reports      *report.BatchReportWriter
	logger       Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	orchestrator *validation.Orchestrator,
	engine approval.Engine,
	reports *report.BatchReportWriter,
	logger Logger,
) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		engine:       engine,
		reports:      reports,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ValidateRequest carries one delivery plus validation options
type ValidateRequest struct {
	Delivery         entity.DailyDelivery   `json:"delivery" binding:"required"`
	UserID           string                 `json:"user_id"`
	Scenario         string                 `json:"scenario"`
	CheckCreditLimit bool                   `json:"check_credit_limit"`
	Extra            map[string]interface{} `json:"context,omitempty"`
}

// ValidateBatchRequest carries a batch of deliveries plus shared options
type ValidateBatchRequest struct {
	Deliveries       []entity.DailyDelivery `json:"deliveries" binding:"required"`
	UserID           string                 `json:"user_id"`
	Scenario         string                 `json:"scenario"`
	CheckCreditLimit bool                   `json:"check_credit_limit"`
}

// ValidateFieldRequest carries one field value to validate
type ValidateFieldRequest struct {
	FieldName string      `json:"field_name" binding:"required"`
	Value     interface{} `json:"value"`
}

// CancelRequest carries a cancellation
type CancelRequest struct {
	RequestedBy string `json:"requested_by" binding:"required"`
	Reason      string `json:"reason"`
}

// EscalateRequest carries a manual escalation
type EscalateRequest struct {
	Reason string `json:"reason"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ValidateDelivery handles POST /api/validations
func (h *Handlers) ValidateDelivery(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result := h.orchestrator.ValidateDelivery(c.Request.Context(), &req.Delivery, validation.Context{
		UserID:           req.UserID,
		Scenario:         req.Scenario,
		CheckCreditLimit: req.CheckCreditLimit,
		Extra:            req.Extra,
	})

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ValidateBatch handles POST /api/validations/batch
func (h *Handlers) ValidateBatch(c *gin.Context) {
	var req ValidateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result := h.validateBatch(c, &req)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// BatchReport handles POST /api/validations/batch/report. It validates the
// batch and streams the result back as an Excel workbook.
func (h *Handlers) BatchReport(c *gin.Context) {
	var req ValidateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result := h.validateBatch(c, &req)

	var buf bytes.Buffer
	if err := h.reports.Write(result, &buf); err != nil {
		h.logger.Error("Batch report rendering failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "report rendering failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="validation-report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handlers) validateBatch(c *gin.Context, req *ValidateBatchRequest) *domain.BatchResult {
	deliveries := make([]*entity.DailyDelivery, len(req.Deliveries))
	for i := range req.Deliveries {
		deliveries[i] = &req.Deliveries[i]
	}

	return h.orchestrator.ValidateDeliveryBatch(c.Request.Context(), deliveries, validation.Context{
		UserID:           req.UserID,
		Scenario:         req.Scenario,
		CheckCreditLimit: req.CheckCreditLimit,
	})
}

// ValidateField handles POST /api/validations/field
func (h *Handlers) ValidateField(c *gin.Context) {
	var req ValidateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result := h.orchestrator.ValidateField(req.FieldName, req.Value)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// SubmitForApproval handles POST /api/approvals
func (h *Handlers) SubmitForApproval(c *gin.Context) {
	var req approval.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	instance, err := h.engine.SubmitForApproval(c.Request.Context(), &req)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: instance})
}

// SubmitBulkInvoices handles POST /api/approvals/bulk-invoices
func (h *Handlers) SubmitBulkInvoices(c *gin.Context) {
	var req approval.BulkSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	instance, err := h.engine.SubmitBulkInvoiceGeneration(c.Request.Context(), &req)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: instance})
}

// ProcessAction handles POST /api/approvals/actions
func (h *Handlers) ProcessAction(c *gin.Context) {
	var action approval.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		h.badRequest(c, err)
		return
	}

	instance, err := h.engine.ProcessApprovalAction(c.Request.Context(), &action)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: instance})
}

// ProcessBulkActions handles POST /api/approvals/actions/bulk
func (h *Handlers) ProcessBulkActions(c *gin.Context) {
	var actions []approval.Action
	if err := c.ShouldBindJSON(&actions); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.engine.ProcessBulkApprovalActions(c.Request.Context(), actions)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ListPendingApprovals handles GET /api/approvals/pending
func (h *Handlers) ListPendingApprovals(c *gin.Context) {
	approverID := c.Query("approver_id")
	if approverID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "approver_id is required"})
		return
	}
	workflowType := c.Query("workflow_type")

	instances, err := h.engine.GetPendingApprovals(c.Request.Context(), approverID, workflowType)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: instances})
}

// GetInstance handles GET /api/approvals/instances/:id
func (h *Handlers) GetInstance(c *gin.Context) {
	instance, err := h.engine.GetWorkflowInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: instance})
}

// CancelInstance handles POST /api/approvals/instances/:id/cancel
func (h *Handlers) CancelInstance(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	instance, err := h.engine.CancelWorkflowInstance(c.Request.Context(), c.Param("id"), req.RequestedBy, req.Reason)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: instance})
}

// EscalateInstance handles POST /api/approvals/instances/:id/escalate
func (h *Handlers) EscalateInstance(c *gin.Context) {
	var req EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	instance, err := h.engine.Escalate(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: instance})
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	h.logger.Error("Invalid request payload", "error", err)
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request payload"})
}

// engineError maps engine sentinel errors onto HTTP status codes
func (h *Handlers) engineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, approval.ErrInstanceNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, approval.ErrNotAuthorized), errors.Is(err, approval.ErrNotRequester):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, approval.ErrInvalidAction),
		errors.Is(err, approval.ErrEscalationExhausted),
		errors.Is(err, approval.ErrNoDeliveries),
		errors.Is(err, approval.ErrDefinitionNotFound):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
