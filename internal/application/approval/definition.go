// Package approval implements the multi-step approval workflow engine:
// workflow definitions, submission with auto-approval short-circuit,
// approval action processing over the instance state machine, bulk actions
// and SLA escalation.
package approval

import (
	"fmt"
	"strings"

	"github.com/omcsuite/daily-delivery/internal/domain/entity"
)

// Approval condition operators
const (
	OpGT    = "GT"
	OpGTE   = "GTE"
	OpLT    = "LT"
	OpLTE   = "LTE"
	OpEQ    = "EQ"
	OpNEQ   = "NEQ"
	OpIn    = "IN"
	OpNotIn = "NOT_IN"
)

// Escalation trigger conditions and actions
const (
	EscalationOnTimeout = "TIMEOUT"

	EscalationNotifyAndReassign = "NOTIFY_AND_REASSIGN"
)

// Condition compares one metadata field against a configured value
type Condition struct {
	Field    string        `json:"field"`
	Operator string        `json:"operator"`
	Value    interface{}   `json:"value,omitempty"`
	Values   []interface{} `json:"values,omitempty"`
}

// Step is one approval stage of a workflow definition
type Step struct {
	StepID        string      `json:"step_id"`
	StepName      string      `json:"step_name"`
	StepOrder     int         `json:"step_order"`
	ApproverRoles []string    `json:"approver_roles"`
	ApproverIDs   []string    `json:"approver_ids,omitempty"`
	TimeoutHours  int         `json:"timeout_hours"`
	Conditions    []Condition `json:"conditions,omitempty"`
}

// EscalationRule drives SLA breach handling on a workflow
type EscalationRule struct {
	RuleID             string   `json:"rule_id"`
	TriggerCondition   string   `json:"trigger_condition"`
	EscalationAction   string   `json:"escalation_action"`
	EscalateToRoles    []string `json:"escalate_to_roles"`
	MaxEscalationLevel int      `json:"max_escalation_level"`
	ExtensionHours     int      `json:"extension_hours"`
}

// AutoApprovalRule short-circuits the workflow at submission when every
// condition of an active rule holds.
type AutoApprovalRule struct {
	RuleID     string      `json:"rule_id"`
	RuleName   string      `json:"rule_name"`
	IsActive   bool        `json:"is_active"`
	Conditions []Condition `json:"conditions"`
}

// Definition is a complete approval workflow configuration
type Definition struct {
	WorkflowID        string             `json:"workflow_id"`
	WorkflowName      string             `json:"workflow_name"`
	WorkflowType      string             `json:"workflow_type"`
	Steps             []Step             `json:"steps"`
	Escalation        EscalationRule     `json:"escalation"`
	AutoApprovalRules []AutoApprovalRule `json:"auto_approval_rules,omitempty"`
	SLAHours          int                `json:"sla_hours"`
	IsActive          bool               `json:"is_active"`
}

// FinalStep reports whether the given step order is the last step
func (d *Definition) FinalStep(stepOrder int) bool {
	return stepOrder >= len(d.Steps)
}

// StepByOrder returns the step with the given 1-based order
func (d *Definition) StepByOrder(order int) (*Step, error) {
	for i := range d.Steps {
		if d.Steps[i].StepOrder == order {
			return &d.Steps[i], nil
		}
	}
	return nil, fmt.Errorf("workflow %s has no step with order %d", d.WorkflowID, order)
}

// DefaultDefinitions returns the built-in workflow configuration keyed by
// workflow type. Every type shares the single manager step with a 24 hour
// timeout and a two level timeout escalation.
func DefaultDefinitions() map[string]*Definition {
	types := []string{
		entity.WorkflowTypeDeliveryApproval,
		entity.WorkflowTypeSupplierInvoiceApproval,
		entity.WorkflowTypeCustomerInvoiceApproval,
		entity.WorkflowTypeBulkInvoiceApproval,
		entity.WorkflowTypeUPPFClaimApproval,
	}

	defs := make(map[string]*Definition, len(types))
	for _, t := range types {
		defs[t] = &Definition{
			WorkflowID:   "WF-" + strings.ReplaceAll(t, "_", "-"),
			WorkflowName: strings.ReplaceAll(t, "_", " "),
			WorkflowType: t,
			Steps: []Step{
				{
					StepID:        "MANAGER_APPROVAL",
					StepName:      "Manager Approval",
					StepOrder:     1,
					ApproverRoles: []string{"MANAGER"},
					TimeoutHours:  24,
				},
			},
			Escalation: EscalationRule{
				RuleID:             "DEFAULT_ESCALATION",
				TriggerCondition:   EscalationOnTimeout,
				EscalationAction:   EscalationNotifyAndReassign,
				EscalateToRoles:    []string{"SENIOR_MANAGER"},
				MaxEscalationLevel: 2,
				ExtensionHours:     24,
			},
			SLAHours: 48,
			IsActive: true,
		}
	}
	return defs
}

// EvaluateConditions reports whether every condition holds against the
// metadata field map. An empty condition list never matches; an unguarded
// auto-approval rule would otherwise approve everything.
func EvaluateConditions(conditions []Condition, fields map[string]interface{}) bool {
	if len(conditions) == 0 {
		return false
	}
	for _, c := range conditions {
		if !evaluateCondition(c, fields) {
			return false
		}
	}
	return true
}

func evaluateCondition(c Condition, fields map[string]interface{}) bool {
	value, present := fields[c.Field]

	switch c.Operator {
	case OpGT, OpGTE, OpLT, OpLTE:
		if !present {
			return false
		}
		a, okA := conditionFloat(value)
		b, okB := conditionFloat(c.Value)
		if !okA || !okB {
			return false
		}
		switch c.Operator {
		case OpGT:
			return a > b
		case OpGTE:
			return a >= b
		case OpLT:
			return a < b
		default:
			return a <= b
		}
	case OpEQ:
		return present && conditionEqual(value, c.Value)
	case OpNEQ:
		return !present || !conditionEqual(value, c.Value)
	case OpIn:
		for _, candidate := range c.Values {
			if present && conditionEqual(value, candidate) {
				return true
			}
		}
		return false
	case OpNotIn:
		for _, candidate := range c.Values {
			if present && conditionEqual(value, candidate) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func conditionFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func conditionEqual(a, b interface{}) bool {
	fa, okA := conditionFloat(a)
	fb, okB := conditionFloat(b)
	if okA && okB {
		return fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// metadataFields flattens instance metadata into the field map conditions
// are evaluated against.
func metadataFields(meta *entity.WorkflowMetadata) map[string]interface{} {
	fields := map[string]interface{}{
		"amount":        meta.Amount,
		"currency":      meta.Currency,
		"customerId":    meta.CustomerID,
		"supplierId":    meta.SupplierID,
		"productType":   meta.ProductType,
		"urgentRequest": meta.UrgentRequest,
	}
	if meta.RiskAssessment != nil {
		fields["riskLevel"] = meta.RiskAssessment.RiskLevel
		fields["riskScore"] = meta.RiskAssessment.RiskScore
	}
	if meta.RegulatoryData != nil {
		fields["complianceScore"] = meta.RegulatoryData.ComplianceScore
		fields["environmentalImpact"] = meta.RegulatoryData.EnvironmentalImpact
	}
	return fields
}
