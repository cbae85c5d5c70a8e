package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omcsuite/daily-delivery/internal/application/dispatcher"
	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/event"
	"github.com/omcsuite/daily-delivery/internal/domain/workflow"
)

// Sentinel errors surfaced by the engine
var (
	ErrInstanceNotFound    = errors.New("workflow instance not found")
	ErrDefinitionNotFound  = errors.New("workflow definition not found")
	ErrNotAuthorized       = errors.New("approver not authorized for this step")
	ErrInvalidAction       = errors.New("action not valid for instance state")
	ErrEscalationExhausted = errors.New("maximum escalation level reached")
	ErrNotRequester        = errors.New("only the requester can cancel the instance")
	ErrNoDeliveries        = errors.New("no deliveries supplied")
)

// Approval actions accepted by ProcessApprovalAction
const (
	ActionApprove     = "APPROVE"
	ActionReject      = "REJECT"
	ActionDelegate    = "DELEGATE"
	ActionRequestInfo = "REQUEST_INFO"
)

// SubmitRequest asks for approval of one delivery
type SubmitRequest struct {
	DeliveryID            string `json:"delivery_id" binding:"required"`
	WorkflowType          string `json:"workflow_type"`
	RequestedBy           string `json:"requested_by" binding:"required"`
	Priority              string `json:"priority"`
	UrgentRequest         bool   `json:"urgent_request"`
	BusinessJustification string `json:"business_justification"`
}

// BulkSubmitRequest asks for approval of invoice generation over a set of
// deliveries.
type BulkSubmitRequest struct {
	DeliveryIDs []string `json:"delivery_ids" binding:"required"`
	RequestedBy string   `json:"requested_by" binding:"required"`
	Priority    string   `json:"priority"`
}

// Action is one approval decision by one approver
type Action struct {
	InstanceID  string   `json:"instance_id" binding:"required"`
	ApproverID  string   `json:"approver_id" binding:"required"`
	Action      string   `json:"action" binding:"required"`
	Comments    string   `json:"comments"`
	DelegateTo  string   `json:"delegate_to,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// BulkActionOutcome is the per-instance result of a bulk action run
type BulkActionOutcome struct {
	InstanceID string `json:"instance_id"`
	Succeeded  bool   `json:"succeeded"`
	Error      string `json:"error,omitempty"`
}

// BulkActionResult aggregates a bulk approval run. Successful plus failed
// always equals the number of submitted actions.
type BulkActionResult struct {
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
	Outcomes   []BulkActionOutcome `json:"outcomes"`
}

// Engine drives approval workflow instances through their lifecycle
type Engine interface {
	SubmitForApproval(ctx context.Context, req *SubmitRequest) (*entity.WorkflowInstance, error)
	SubmitBulkInvoiceGeneration(ctx context.Context, req *BulkSubmitRequest) (*entity.WorkflowInstance, error)
	ProcessApprovalAction(ctx context.Context, action *Action) (*entity.WorkflowInstance, error)
	ProcessBulkApprovalActions(ctx context.Context, actions []Action) (*BulkActionResult, error)
	GetPendingApprovals(ctx context.Context, approverID, workflowType string) ([]*entity.WorkflowInstance, error)
	GetWorkflowInstance(ctx context.Context, instanceID string) (*entity.WorkflowInstance, error)
	CancelWorkflowInstance(ctx context.Context, instanceID, requestedBy, reason string) (*entity.WorkflowInstance, error)
	Escalate(ctx context.Context, instanceID, reason string) (*entity.WorkflowInstance, error)
	HandleTimeouts(ctx context.Context, now time.Time) (int, error)
}

// Logger is the narrow logging surface the engine needs
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type engine struct {
	instances   port.InstanceRepository
	deliveries  port.DeliveryRepository
	history     port.HistoryRepository
	txManager   port.TransactionManager
	directory   port.DirectoryService
	notifier    port.NotificationService
	dispatcher  dispatcher.Dispatcher
	logger      Logger
	definitions map[string]*Definition
}

// EngineOption configures optional engine collaborators
type EngineOption func(*engine)

// WithDefinitions overrides the built-in workflow definitions
func WithDefinitions(defs map[string]*Definition) EngineOption {
	return func(e *engine) { e.definitions = defs }
}

// WithEngineDispatcher wires the domain event dispatcher
func WithEngineDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engine) { e.dispatcher = d }
}

func NewEngine(
	instances port.InstanceRepository,
	deliveries port.DeliveryRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	directory port.DirectoryService,
	notifier port.NotificationService,
	logger Logger,
	opts ...EngineOption,
) Engine {
	e := &engine{
		instances:   instances,
		deliveries:  deliveries,
		history:     history,
		txManager:   txManager,
		directory:   directory,
		notifier:    notifier,
		logger:      logger,
		definitions: DefaultDefinitions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitForApproval starts an approval workflow for one delivery. When an
// auto-approval rule matches the instance is approved immediately with a
// SYSTEM_APPROVED audit entry.
func (e *engine) SubmitForApproval(ctx context.Context, req *SubmitRequest) (*entity.WorkflowInstance, error) {
	workflowType := req.WorkflowType
	if workflowType == "" {
		workflowType = entity.WorkflowTypeDeliveryApproval
	}
	def, err := e.definition(workflowType)
	if err != nil {
		return nil, err
	}

	delivery, err := e.deliveries.GetByID(ctx, req.DeliveryID)
	if err != nil {
		return nil, fmt.Errorf("load delivery %s: %w", req.DeliveryID, err)
	}

	instance := e.newInstance(def, delivery, req)

	autoRule := e.matchAutoApproval(def, instance)

	err = e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if autoRule != nil {
			return e.autoApprove(ctx, instance, delivery, autoRule)
		}
		return e.startWorkflow(ctx, instance, delivery, def)
	})
	if err != nil {
		return nil, err
	}

	e.notifySubmission(ctx, instance, def, autoRule != nil)
	return instance, nil
}

// SubmitBulkInvoiceGeneration starts a bulk invoice approval covering a set
// of deliveries. The instance carries the aggregate amount and bulk risk
// assessment.
func (e *engine) SubmitBulkInvoiceGeneration(ctx context.Context, req *BulkSubmitRequest) (*entity.WorkflowInstance, error) {
	if len(req.DeliveryIDs) == 0 {
		return nil, ErrNoDeliveries
	}

	def, err := e.definition(entity.WorkflowTypeBulkInvoiceApproval)
	if err != nil {
		return nil, err
	}

	deliveries, err := e.deliveries.GetByIDs(ctx, req.DeliveryIDs)
	if err != nil {
		return nil, fmt.Errorf("load deliveries: %w", err)
	}
	if len(deliveries) != len(req.DeliveryIDs) {
		return nil, fmt.Errorf("only %d of %d deliveries found", len(deliveries), len(req.DeliveryIDs))
	}

	totalAmount := 0.0
	for _, d := range deliveries {
		totalAmount += d.TotalValue
	}

	now := time.Now()
	instance := &entity.WorkflowInstance{
		InstanceID:         uuid.NewString(),
		WorkflowID:         def.WorkflowID,
		WorkflowType:       def.WorkflowType,
		SourceDocumentID:   uuid.NewString(),
		SourceDocumentType: "BULK_INVOICE_GENERATION",
		RequestedBy:        req.RequestedBy,
		RequestedAt:        now,
		Status:             workflow.StatePending.String(),
		Priority:           priorityOrDefault(req.Priority),
		SLADeadline:        now.Add(time.Duration(def.SLAHours) * time.Hour),
		Metadata: entity.WorkflowMetadata{
			Amount:         totalAmount,
			Currency:       "GHS",
			RiskAssessment: AssessBulkRisk(deliveries),
		},
	}

	err = e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return e.startWorkflow(ctx, instance, nil, def)
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, event.NewEvent(event.TypeBulkInvoiceSubmitted, instance.InstanceID, map[string]interface{}{
		"delivery_count": len(deliveries),
		"total_amount":   totalAmount,
		"requested_by":   req.RequestedBy,
	}))
	e.notifyStep(ctx, instance, def)
	return instance, nil
}

// ProcessApprovalAction applies one approver decision to an instance. The
// load, transition and persist run in one transaction; notifications follow
// after commit and never fail the action.
func (e *engine) ProcessApprovalAction(ctx context.Context, action *Action) (*entity.WorkflowInstance, error) {
	var instance *entity.WorkflowInstance

	err := e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		instance, err = e.instances.GetByID(ctx, action.InstanceID)
		if err != nil {
			return err
		}
		if instance == nil {
			return ErrInstanceNotFound
		}

		state := workflow.State(instance.Status)
		if state.IsTerminal() {
			return fmt.Errorf("%w: instance is %s", ErrInvalidAction, instance.Status)
		}

		authorized, err := e.isAuthorized(ctx, action.ApproverID, instance)
		if err != nil {
			return fmt.Errorf("authorization check: %w", err)
		}
		if !authorized {
			return ErrNotAuthorized
		}

		def, err := e.definition(instance.WorkflowType)
		if err != nil {
			return err
		}

		switch action.Action {
		case ActionApprove:
			err = e.approve(ctx, instance, def, action)
		case ActionReject:
			err = e.reject(ctx, instance, action)
		case ActionDelegate:
			err = e.delegate(ctx, instance, action)
		case ActionRequestInfo:
			err = e.requestInfo(ctx, instance, action)
		default:
			err = fmt.Errorf("%w: unknown action %s", ErrInvalidAction, action.Action)
		}
		if err != nil {
			return err
		}

		if instance.WorkflowType == entity.WorkflowTypeDeliveryApproval {
			if err := e.syncDeliveryStatus(ctx, instance); err != nil {
				return err
			}
		}

		return e.instances.Save(ctx, instance)
	})
	if err != nil {
		return nil, err
	}

	e.notifyAction(ctx, instance, action)
	e.publish(ctx, event.NewEvent(event.TypeApprovalActionProcessed, instance.InstanceID, map[string]interface{}{
		"action":      action.Action,
		"approver_id": action.ApproverID,
		"status":      instance.Status,
	}))
	return instance, nil
}

// ProcessBulkApprovalActions applies each action in isolation: one failing
// instance never rolls back the others.
func (e *engine) ProcessBulkApprovalActions(ctx context.Context, actions []Action) (*BulkActionResult, error) {
	result := &BulkActionResult{Outcomes: make([]BulkActionOutcome, 0, len(actions))}

	for i := range actions {
		action := actions[i]
		_, err := e.ProcessApprovalAction(ctx, &action)
		outcome := BulkActionOutcome{InstanceID: action.InstanceID, Succeeded: err == nil}
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
			e.logger.Warn("bulk approval action failed",
				"instance_id", action.InstanceID, "action", action.Action, "error", err)
		} else {
			result.Successful++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	e.publish(ctx, event.NewEvent(event.TypeBulkApprovalCompleted, uuid.NewString(), map[string]interface{}{
		"total":      len(actions),
		"successful": result.Successful,
		"failed":     result.Failed,
	}))
	return result, nil
}

// GetPendingApprovals lists active instances the approver may act on.
// Authorization is resolved per step through the directory service.
func (e *engine) GetPendingApprovals(ctx context.Context, approverID, workflowType string) ([]*entity.WorkflowInstance, error) {
	pending, err := e.instances.ListPending(ctx, workflowType)
	if err != nil {
		return nil, err
	}

	var visible []*entity.WorkflowInstance
	for _, instance := range pending {
		authorized, err := e.isAuthorized(ctx, approverID, instance)
		if err != nil {
			e.logger.Warn("authorization check failed", "instance_id", instance.InstanceID, "error", err)
			continue
		}
		if authorized {
			visible = append(visible, instance)
		}
	}
	return visible, nil
}

// isAuthorized resolves approval rights for the current step: the directory
// assignment, or a delegation recorded on the instance.
func (e *engine) isAuthorized(ctx context.Context, approverID string, instance *entity.WorkflowInstance) (bool, error) {
	if instance.DelegatedApproverID != "" && approverID == instance.DelegatedApproverID {
		return true, nil
	}
	return e.directory.IsAuthorizedForStep(ctx, approverID, instance.WorkflowID, instance.CurrentStepID)
}

func (e *engine) GetWorkflowInstance(ctx context.Context, instanceID string) (*entity.WorkflowInstance, error) {
	instance, err := e.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, ErrInstanceNotFound
	}
	return instance, nil
}

// CancelWorkflowInstance cancels a non-terminal instance. Only the original
// requester may cancel.
func (e *engine) CancelWorkflowInstance(ctx context.Context, instanceID, requestedBy, reason string) (*entity.WorkflowInstance, error) {
	var instance *entity.WorkflowInstance

	err := e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		instance, err = e.instances.GetByID(ctx, instanceID)
		if err != nil {
			return err
		}
		if instance == nil {
			return ErrInstanceNotFound
		}
		if instance.RequestedBy != requestedBy {
			return ErrNotRequester
		}

		machine := machineFor(instance.Status)
		if err := machine.Fire(ctx, workflow.TriggerCancel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		instance.Status = machine.State().String()

		e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
			StepID:     instance.CurrentStepID,
			ApproverID: requestedBy,
			Action:     entity.HistoryActionCancelled,
			Comments:   reason,
		})

		if instance.WorkflowType == entity.WorkflowTypeDeliveryApproval {
			if err := e.deliveries.UpdateStatus(ctx, instance.SourceDocumentID, entity.DeliveryStatusDraft); err != nil {
				return err
			}
		}
		return e.instances.Save(ctx, instance)
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, event.NewEvent(event.TypeInstanceCancelled, instance.InstanceID, map[string]interface{}{
		"cancelled_by": requestedBy,
		"reason":       reason,
	}))
	return instance, nil
}

// Escalate raises the escalation level of an active instance and reassigns
// it to the escalation roles. Reaching the maximum level moves the instance
// to ESCALATED, out of the automated flow; escalating past it fails with
// ErrEscalationExhausted.
func (e *engine) Escalate(ctx context.Context, instanceID, reason string) (*entity.WorkflowInstance, error) {
	var instance *entity.WorkflowInstance

	err := e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		instance, err = e.instances.GetByID(ctx, instanceID)
		if err != nil {
			return err
		}
		if instance == nil {
			return ErrInstanceNotFound
		}
		if workflow.State(instance.Status).IsTerminal() {
			return fmt.Errorf("%w: instance is %s", ErrInvalidAction, instance.Status)
		}

		def, err := e.definition(instance.WorkflowType)
		if err != nil {
			return err
		}
		rule := def.Escalation

		if instance.EscalationLevel >= rule.MaxEscalationLevel {
			return ErrEscalationExhausted
		}

		instance.EscalationLevel++
		instance.SLADeadline = time.Now().Add(time.Duration(rule.ExtensionHours) * time.Hour)

		if instance.EscalationLevel >= rule.MaxEscalationLevel {
			machine := machineFor(instance.Status)
			if err := machine.Fire(ctx, workflow.TriggerEscalate); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidAction, err)
			}
			instance.Status = machine.State().String()
		}

		e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
			StepID:   instance.CurrentStepID,
			Action:   entity.HistoryActionEscalated,
			Comments: reason,
		})

		return e.instances.Save(ctx, instance)
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, event.NewEvent(event.TypeInstanceEscalated, instance.InstanceID, map[string]interface{}{
		"escalation_level": instance.EscalationLevel,
		"status":           instance.Status,
		"reason":           reason,
	}))
	return instance, nil
}

// HandleTimeouts sweeps active instances past their SLA deadline. Each
// breach escalates once; instances that have exhausted escalation move to
// TIMEOUT. Returns the number of instances acted on.
func (e *engine) HandleTimeouts(ctx context.Context, now time.Time) (int, error) {
	overdue, err := e.instances.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	acted := 0
	for _, instance := range overdue {
		if _, err := e.Escalate(ctx, instance.InstanceID, "SLA deadline exceeded"); err != nil {
			if !errors.Is(err, ErrEscalationExhausted) {
				e.logger.Error("timeout escalation failed", "instance_id", instance.InstanceID, "error", err)
				continue
			}
			if err := e.timeoutInstance(ctx, instance.InstanceID); err != nil {
				e.logger.Error("timeout transition failed", "instance_id", instance.InstanceID, "error", err)
				continue
			}
		}
		acted++
	}
	return acted, nil
}

func (e *engine) timeoutInstance(ctx context.Context, instanceID string) error {
	return e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		instance, err := e.instances.GetByID(ctx, instanceID)
		if err != nil {
			return err
		}
		if instance == nil {
			return ErrInstanceNotFound
		}

		machine := machineFor(instance.Status)
		if err := machine.Fire(ctx, workflow.TriggerTimeout); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		instance.Status = machine.State().String()

		e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
			StepID:   instance.CurrentStepID,
			Action:   entity.HistoryActionTimeout,
			Comments: "Approval window expired after final escalation",
		})
		return e.instances.Save(ctx, instance)
	})
}

// ---- submission internals ----

func (e *engine) definition(workflowType string) (*Definition, error) {
	def, ok := e.definitions[workflowType]
	if !ok || !def.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrDefinitionNotFound, workflowType)
	}
	return def, nil
}

func (e *engine) newInstance(def *Definition, d *entity.DailyDelivery, req *SubmitRequest) *entity.WorkflowInstance {
	now := time.Now()
	deliveryDate := d.DeliveryDate
	compliance := complianceSnapshot(d)

	return &entity.WorkflowInstance{
		InstanceID:         uuid.NewString(),
		WorkflowID:         def.WorkflowID,
		WorkflowType:       def.WorkflowType,
		SourceDocumentID:   d.ID,
		SourceDocumentType: "DAILY_DELIVERY",
		RequestedBy:        req.RequestedBy,
		RequestedAt:        now,
		Status:             workflow.StatePending.String(),
		Priority:           priorityOrDefault(req.Priority),
		SLADeadline:        now.Add(time.Duration(def.SLAHours) * time.Hour),
		Metadata: entity.WorkflowMetadata{
			TenantID:              d.TenantID,
			Amount:                d.TotalValue,
			Currency:              d.Currency,
			CustomerID:            d.CustomerID,
			CustomerName:          d.CustomerName,
			SupplierID:            d.SupplierID,
			ProductType:           d.ProductType,
			DeliveryDate:          &deliveryDate,
			UrgentRequest:         req.UrgentRequest,
			BusinessJustification: req.BusinessJustification,
			RiskAssessment:        AssessDeliveryRisk(d),
			RegulatoryData: &entity.RegulatoryData{
				NPAPermitNumber:     d.NPAPermitNumber,
				CustomsEntryNumber:  d.CustomsEntryNumber,
				UPPFEligible:        d.UPPFEligible(),
				PetroleumTaxAmount:  d.PetroleumTaxAmount,
				TotalTaxes:          d.TotalTaxes(),
				ComplianceScore:     compliance.ComplianceScore,
				EnvironmentalImpact: EnvironmentalImpact(d.ProductType),
			},
		},
		ComplianceStatus: compliance,
	}
}

func (e *engine) matchAutoApproval(def *Definition, instance *entity.WorkflowInstance) *AutoApprovalRule {
	fields := metadataFields(&instance.Metadata)
	for i := range def.AutoApprovalRules {
		rule := &def.AutoApprovalRules[i]
		if !rule.IsActive {
			continue
		}
		if EvaluateConditions(rule.Conditions, fields) {
			return rule
		}
	}
	return nil
}

func (e *engine) autoApprove(ctx context.Context, instance *entity.WorkflowInstance, d *entity.DailyDelivery, rule *AutoApprovalRule) error {
	instance.Status = workflow.StateApproved.String()

	e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
		StepID:       "AUTO_APPROVAL",
		StepName:     rule.RuleName,
		ApproverID:   "SYSTEM",
		ApproverName: "System",
		Action:       entity.HistoryActionSystemApproved,
		Comments:     fmt.Sprintf("Auto-approved by rule %s", rule.RuleID),
	})

	if err := e.instances.Create(ctx, instance); err != nil {
		return err
	}
	if err := e.deliveries.UpdateStatus(ctx, d.ID, entity.DeliveryStatusApproved); err != nil {
		return err
	}
	return e.deliveries.SetApprovalWorkflow(ctx, d.ID, instance.InstanceID)
}

func (e *engine) startWorkflow(ctx context.Context, instance *entity.WorkflowInstance, d *entity.DailyDelivery, def *Definition) error {
	machine := machineFor(instance.Status)
	if err := machine.Fire(ctx, workflow.TriggerStart); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	instance.Status = machine.State().String()

	first, err := def.StepByOrder(1)
	if err != nil {
		return err
	}
	instance.CurrentStepID = first.StepID
	instance.CurrentStepOrder = first.StepOrder

	if err := e.instances.Create(ctx, instance); err != nil {
		return err
	}
	if d != nil {
		if err := e.deliveries.UpdateStatus(ctx, d.ID, entity.DeliveryStatusPendingApproval); err != nil {
			return err
		}
		return e.deliveries.SetApprovalWorkflow(ctx, d.ID, instance.InstanceID)
	}
	return nil
}

// ---- action internals ----

func (e *engine) approve(ctx context.Context, instance *entity.WorkflowInstance, def *Definition, action *Action) error {
	machine := machineFor(instance.Status)

	// The history entry records the step that was acted on, captured before
	// the step pointer advances.
	actedStepID := instance.CurrentStepID

	if def.FinalStep(instance.CurrentStepOrder) {
		if err := machine.Fire(ctx, workflow.TriggerApprove); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
	} else {
		if err := machine.Fire(ctx, workflow.TriggerAdvance); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		next, err := def.StepByOrder(instance.CurrentStepOrder + 1)
		if err != nil {
			return err
		}
		instance.CurrentStepID = next.StepID
		instance.CurrentStepOrder = next.StepOrder
	}
	instance.Status = machine.State().String()
	instance.DelegatedApproverID = ""

	e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
		StepID:      actedStepID,
		ApproverID:  action.ApproverID,
		Action:      entity.HistoryActionApproved,
		Comments:    action.Comments,
		Attachments: action.Attachments,
	})
	return nil
}

func (e *engine) reject(ctx context.Context, instance *entity.WorkflowInstance, action *Action) error {
	machine := machineFor(instance.Status)
	if err := machine.Fire(ctx, workflow.TriggerReject); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	instance.Status = machine.State().String()

	e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
		StepID:      instance.CurrentStepID,
		ApproverID:  action.ApproverID,
		Action:      entity.HistoryActionRejected,
		Comments:    action.Comments,
		Attachments: action.Attachments,
	})
	return nil
}

// delegate reassigns the current step. The instance stays IN_PROGRESS; the
// target gains approval rights on this step until it completes.
func (e *engine) delegate(ctx context.Context, instance *entity.WorkflowInstance, action *Action) error {
	if action.DelegateTo == "" {
		return fmt.Errorf("%w: delegate target required", ErrInvalidAction)
	}

	delegate, err := e.directory.GetApprover(ctx, action.DelegateTo)
	if err != nil {
		return fmt.Errorf("resolve delegate %s: %w", action.DelegateTo, err)
	}

	machine := machineFor(instance.Status)
	if err := machine.Fire(ctx, workflow.TriggerDelegate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	instance.DelegatedApproverID = action.DelegateTo

	e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
		StepID:             instance.CurrentStepID,
		ApproverID:         action.DelegateTo,
		ApproverName:       delegate.Name,
		Action:             entity.HistoryActionDelegated,
		Comments:           action.Comments,
		DelegatedTo:        action.DelegateTo,
		OriginalApproverID: action.ApproverID,
	})
	return nil
}

func (e *engine) requestInfo(ctx context.Context, instance *entity.WorkflowInstance, action *Action) error {
	machine := machineFor(instance.Status)
	if err := machine.Fire(ctx, workflow.TriggerRequestInfo); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	e.appendHistory(ctx, instance, &entity.ApprovalHistoryEntry{
		StepID:     instance.CurrentStepID,
		ApproverID: action.ApproverID,
		Action:     entity.HistoryActionInfoRequested,
		Comments:   action.Comments,
	})
	return nil
}

// syncDeliveryStatus mirrors terminal instance states onto the source
// delivery.
func (e *engine) syncDeliveryStatus(ctx context.Context, instance *entity.WorkflowInstance) error {
	var status string
	switch workflow.State(instance.Status) {
	case workflow.StateApproved:
		status = entity.DeliveryStatusApproved
	case workflow.StateRejected:
		status = entity.DeliveryStatusRejected
	default:
		return nil
	}
	return e.deliveries.UpdateStatus(ctx, instance.SourceDocumentID, status)
}

func (e *engine) appendHistory(ctx context.Context, instance *entity.WorkflowInstance, entry *entity.ApprovalHistoryEntry) {
	entry.EntryID = uuid.NewString()
	entry.ActionDate = time.Now()
	instance.ApprovalHistory = append(instance.ApprovalHistory, *entry)

	if err := e.history.Append(ctx, instance.InstanceID, entry); err != nil {
		// The instance copy of the history is authoritative; the side table
		// is a query convenience.
		e.logger.Warn("history append failed", "instance_id", instance.InstanceID, "error", err)
	}
}

// ---- notifications and events ----

func (e *engine) notifySubmission(ctx context.Context, instance *entity.WorkflowInstance, def *Definition, autoApproved bool) {
	if autoApproved {
		e.publish(ctx, event.NewEvent(event.TypeAutoApproved, instance.SourceDocumentID, map[string]interface{}{
			"instance_id": instance.InstanceID,
			"amount":      instance.Metadata.Amount,
		}))
		return
	}

	e.publish(ctx, event.NewEvent(event.TypeSubmittedForApproval, instance.SourceDocumentID, map[string]interface{}{
		"instance_id":   instance.InstanceID,
		"workflow_type": instance.WorkflowType,
		"requested_by":  instance.RequestedBy,
	}))
	e.notifyStep(ctx, instance, def)
}

func (e *engine) notifyStep(ctx context.Context, instance *entity.WorkflowInstance, def *Definition) {
	step, err := def.StepByOrder(instance.CurrentStepOrder)
	if err != nil {
		return
	}

	notice := &port.ApprovalRequestNotice{
		InstanceID:   instance.InstanceID,
		WorkflowType: instance.WorkflowType,
		RequestedBy:  instance.RequestedBy,
		Priority:     instance.Priority,
		SLADeadline:  instance.SLADeadline,
		ApproverIDs:  step.ApproverIDs,
		Amount:       instance.Metadata.Amount,
		Currency:     instance.Metadata.Currency,
	}
	if err := e.notifier.SendApprovalRequest(ctx, notice); err != nil {
		e.logger.Warn("approval request notification failed", "instance_id", instance.InstanceID, "error", err)
	}
}

func (e *engine) notifyAction(ctx context.Context, instance *entity.WorkflowInstance, action *Action) {
	notice := &port.ApprovalActionNotice{
		InstanceID:    instance.InstanceID,
		Action:        action.Action,
		ApproverID:    action.ApproverID,
		Comments:      action.Comments,
		CurrentStatus: instance.Status,
	}
	if err := e.notifier.SendApprovalAction(ctx, notice); err != nil {
		e.logger.Warn("approval action notification failed", "instance_id", instance.InstanceID, "error", err)
	}
}

func (e *engine) publish(ctx context.Context, evt *event.Event) {
	if e.dispatcher == nil {
		return
	}
	e.dispatcher.DispatchAsync(ctx, evt)
}

func priorityOrDefault(priority string) string {
	if priority == "" {
		return entity.PriorityMedium
	}
	return priority
}

func complianceSnapshot(d *entity.DailyDelivery) entity.ComplianceStatus {
	status := entity.ComplianceStatus{
		NPAPermitValid:    d.NPAPermitNumber != "",
		CustomsEntryValid: d.CustomsEntryNumber != "",
	}

	expected := d.TotalValue * 0.40
	if expected > 0 {
		variance := d.TotalTaxes() - expected
		if variance < 0 {
			variance = -variance
		}
		status.TaxCalculationsValid = variance/expected <= 0.05
	}

	if !status.NPAPermitValid && d.ProductType != entity.ProductLubricants {
		status.MissingDocuments = append(status.MissingDocuments, "NPA_PERMIT")
	}
	if !status.CustomsEntryValid {
		status.MissingDocuments = append(status.MissingDocuments, "CUSTOMS_ENTRY")
	}

	score := 100
	score -= 25 * len(status.MissingDocuments)
	if !status.TaxCalculationsValid {
		score -= 20
	}
	if score < 0 {
		score = 0
	}
	status.ComplianceScore = score
	status.IsCompliant = len(status.MissingDocuments) == 0 && status.TaxCalculationsValid
	return status
}
