// Package validation implements the delivery validation engine: a rule
// registry, single-field validation, business rule evaluation, compliance
// and data-quality checks, and the orchestrator that aggregates them into a
// scored result.
package validation

import (
	"fmt"
	"math"
	"regexp"

	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

var deliveryNumberPattern = regexp.MustCompile(`^DD-\d{8}-[A-Z0-9]{6}$`)

// Registry is the static catalog of field rules and business rules. It is
// built once at process start and never mutated.
type Registry struct {
	fieldRules    []validation.FieldRule
	businessRules []validation.BusinessRule
	byField       map[string]*validation.FieldRule
}

// NewRegistry builds the built-in rule catalog. It fails when any business
// rule carries an empty condition list, which would otherwise match every
// record unconditionally.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		fieldRules:    builtinFieldRules(),
		businessRules: builtinBusinessRules(),
	}

	r.byField = make(map[string]*validation.FieldRule, len(r.fieldRules))
	for i := range r.fieldRules {
		rule := &r.fieldRules[i]
		if rule.FieldName == "" {
			return nil, fmt.Errorf("field rule %d has no field name", i)
		}
		r.byField[rule.FieldName] = rule
	}

	for _, rule := range r.businessRules {
		if len(rule.Conditions) == 0 {
			return nil, fmt.Errorf("business rule %s has no conditions", rule.RuleID)
		}
	}

	return r, nil
}

// FieldRules returns all registered field rules in declaration order
func (r *Registry) FieldRules() []validation.FieldRule {
	return r.fieldRules
}

// FieldRule returns the rule for a field, or nil when the field is unknown
func (r *Registry) FieldRule(fieldName string) *validation.FieldRule {
	return r.byField[fieldName]
}

// BusinessRules returns all registered business rules
func (r *Registry) BusinessRules() []validation.BusinessRule {
	return r.businessRules
}

func floatPtr(v float64) *float64 { return &v }

func builtinFieldRules() []validation.FieldRule {
	allowedProducts := make([]interface{}, len(entity.ProductGrades))
	for i, g := range entity.ProductGrades {
		allowedProducts[i] = g
	}

	return []validation.FieldRule{
		{
			FieldName:     "deliveryNumber",
			Required:      true,
			DataType:      validation.TypeString,
			MinLength:     5,
			MaxLength:     50,
			Pattern:       deliveryNumberPattern,
			BusinessRules: []string{RuleUniqueDeliveryNumber},
		},
		{
			FieldName:     "deliveryDate",
			Required:      true,
			DataType:      validation.TypeDate,
			BusinessRules: []string{"VALID_DELIVERY_DATE_RANGE"},
		},
		{
			FieldName:     "supplierId",
			Required:      true,
			DataType:      validation.TypeString,
			BusinessRules: []string{"VALID_SUPPLIER_ID", "ACTIVE_SUPPLIER"},
		},
		{
			FieldName:     "customerId",
			Required:      true,
			DataType:      validation.TypeString,
			BusinessRules: []string{"VALID_CUSTOMER_ID", "ACTIVE_CUSTOMER"},
		},
		{
			FieldName: "customerName",
			Required:  true,
			DataType:  validation.TypeString,
			MinLength: 2,
			MaxLength: 255,
		},
		{
			FieldName:     "productType",
			Required:      true,
			DataType:      validation.TypeString,
			AllowedValues: allowedProducts,
		},
		{
			FieldName:     "quantityLitres",
			Required:      true,
			DataType:      validation.TypeNumber,
			MinValue:      floatPtr(0.01),
			MaxValue:      floatPtr(100000),
			BusinessRules: []string{"REASONABLE_QUANTITY"},
		},
		{
			FieldName:     "unitPrice",
			Required:      true,
			DataType:      validation.TypeNumber,
			MinValue:      floatPtr(0.01),
			MaxValue:      floatPtr(50),
			BusinessRules: []string{"REASONABLE_UNIT_PRICE"},
		},
		{
			FieldName:     "totalValue",
			Required:      true,
			DataType:      validation.TypeNumber,
			MinValue:      floatPtr(0.01),
			BusinessRules: []string{RuleCorrectTotalCalculation},
		},
		{
			FieldName:              "psaNumber",
			Required:               true,
			DataType:               validation.TypeString,
			MinLength:              5,
			MaxLength:              50,
			ComplianceRequirements: []string{"GHANA_NPA_COMPLIANCE"},
		},
		{
			FieldName:              "waybillNumber",
			Required:               true,
			DataType:               validation.TypeString,
			MinLength:              5,
			MaxLength:              50,
			ComplianceRequirements: []string{"TRANSPORT_COMPLIANCE"},
		},
		{
			FieldName:              "npaPermitNumber",
			Required:               false,
			DataType:               validation.TypeString,
			ComplianceRequirements: []string{"GHANA_NPA_PERMIT"},
		},
		{
			FieldName:              "customsEntryNumber",
			Required:               false,
			DataType:               validation.TypeString,
			ComplianceRequirements: []string{"GHANA_CUSTOMS_COMPLIANCE"},
		},
	}
}

// Built-in business rule identifiers
const (
	RuleUniqueDeliveryNumber    = "UNIQUE_DELIVERY_NUMBER"
	RuleCorrectTotalCalculation = "CORRECT_TOTAL_CALCULATION"
)

// totalCalculationTolerance is the accepted relative variance between the
// declared total and quantity x unit price. Round-off inside the tolerance
// must not fire the rule.
const totalCalculationTolerance = 0.01

func builtinBusinessRules() []validation.BusinessRule {
	return []validation.BusinessRule{
		{
			RuleID:          RuleUniqueDeliveryNumber,
			RuleName:        "Unique Delivery Number",
			RuleDescription: "Each delivery must have a unique delivery number",
			RuleType:        validation.RuleTypeValidation,
			Conditions: []validation.RuleCondition{
				{
					ConditionType: validation.ConditionFieldValue,
					FieldName:     "deliveryNumber",
					Operator:      validation.OpIsNotEmpty,
				},
			},
			Actions: []validation.RuleAction{
				{
					ActionType:       validation.ActionError,
					ErrorMessage:     "Delivery number must be unique",
					CorrectionAction: "Generate new unique delivery number",
				},
			},
			IsActive:            true,
			Priority:            1,
			ApplicableScenarios: []string{validation.ScenarioCreate, validation.ScenarioUpdate},
		},
		{
			RuleID:          RuleCorrectTotalCalculation,
			RuleName:        "Correct Total Value Calculation",
			RuleDescription: "Total value must equal quantity x unit price",
			RuleType:        validation.RuleTypeCalculation,
			Conditions: []validation.RuleCondition{
				{
					ConditionType: validation.ConditionCalculation,
					Predicate:     totalCalculationMismatch,
				},
			},
			Actions: []validation.RuleAction{
				{
					ActionType:       validation.ActionError,
					ErrorMessage:     "Total value does not match quantity x unit price",
					CorrectionAction: "Recalculate total value",
				},
			},
			IsActive:            true,
			Priority:            2,
			ApplicableScenarios: []string{validation.ScenarioCreate, validation.ScenarioUpdate, validation.ScenarioCalculation},
		},
	}
}

// totalCalculationMismatch reports a violation when the declared total
// deviates from quantity x unit price by more than the tolerance.
func totalCalculationMismatch(merged map[string]interface{}) bool {
	quantity, ok1 := toFloat(merged["quantityLitres"])
	unitPrice, ok2 := toFloat(merged["unitPrice"])
	totalValue, ok3 := toFloat(merged["totalValue"])
	if !ok1 || !ok2 || !ok3 {
		return false
	}

	expected := expectedTotal(quantity, unitPrice)
	if expected == 0 {
		return false
	}

	variance := math.Abs(totalValue-expected) / expected
	return variance > totalCalculationTolerance
}
