package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

func singleConditionRule(op, field string, expected interface{}) *validation.BusinessRule {
	return &validation.BusinessRule{
		RuleID:          "TEST_RULE",
		RuleName:        "Test rule",
		RuleDescription: "Fires when its one condition holds",
		RuleType:        validation.RuleTypeValidation,
		IsActive:        true,
		Conditions: []validation.RuleCondition{
			{ConditionType: validation.ConditionFieldValue, FieldName: field, Operator: op, ExpectedValue: expected},
		},
		Actions: []validation.RuleAction{
			{ActionType: validation.ActionError, ErrorMessage: "test rule fired"},
		},
	}
}

func TestEvaluateOperators(t *testing.T) {
	e := NewRuleEvaluator()

	tests := []struct {
		name     string
		op       string
		field    string
		expected interface{}
		merged   map[string]interface{}
		fires    bool
	}{
		{"equals string match", validation.OpEquals, "productType", "PMS",
			map[string]interface{}{"productType": "PMS"}, true},
		{"equals string mismatch", validation.OpEquals, "productType", "PMS",
			map[string]interface{}{"productType": "AGO"}, false},
		{"equals numeric across widths", validation.OpEquals, "quantityLitres", 5000,
			map[string]interface{}{"quantityLitres": 5000.0}, true},
		{"not equals", validation.OpNotEquals, "currency", "GHS",
			map[string]interface{}{"currency": "USD"}, true},
		{"greater than fires", validation.OpGreater, "totalValue", 100000.0,
			map[string]interface{}{"totalValue": 150000.0}, true},
		{"greater than boundary", validation.OpGreater, "totalValue", 100000.0,
			map[string]interface{}{"totalValue": 100000.0}, false},
		{"greater than non-numeric value", validation.OpGreater, "totalValue", 100000.0,
			map[string]interface{}{"totalValue": "lots"}, false},
		{"less than fires", validation.OpLess, "quantityLitres", 100.0,
			map[string]interface{}{"quantityLitres": 50.0}, true},
		{"is empty on missing field", validation.OpIsEmpty, "npaPermitNumber", nil,
			map[string]interface{}{}, true},
		{"is empty on blank string", validation.OpIsEmpty, "npaPermitNumber", nil,
			map[string]interface{}{"npaPermitNumber": "   "}, true},
		{"is empty on populated string", validation.OpIsEmpty, "npaPermitNumber", nil,
			map[string]interface{}{"npaPermitNumber": "NPA-2026-001"}, false},
		{"is not empty", validation.OpIsNotEmpty, "deliveryNumber", nil,
			map[string]interface{}{"deliveryNumber": "DD-20260815-A1B2C3"}, true},
		{"contains", validation.OpContains, "customerName", "Energy",
			map[string]interface{}{"customerName": "Star Energy Ltd"}, true},
		{"contains mismatch", validation.OpContains, "customerName", "Energy",
			map[string]interface{}{"customerName": "Goil Filling Station"}, false},
		{"in range float bounds", validation.OpInRange, "densityAtLoading", []float64{0.71, 0.77},
			map[string]interface{}{"densityAtLoading": 0.745}, true},
		{"in range inclusive lower bound", validation.OpInRange, "densityAtLoading", []float64{0.71, 0.77},
			map[string]interface{}{"densityAtLoading": 0.71}, true},
		{"in range interface bounds", validation.OpInRange, "temperatureAtLoading", []interface{}{15, 35.0},
			map[string]interface{}{"temperatureAtLoading": 28.4}, true},
		{"in range below", validation.OpInRange, "densityAtLoading", []float64{0.71, 0.77},
			map[string]interface{}{"densityAtLoading": 0.60}, false},
		{"in range non-numeric value", validation.OpInRange, "densityAtLoading", []float64{0.71, 0.77},
			map[string]interface{}{"densityAtLoading": "heavy"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := singleConditionRule(tt.op, tt.field, tt.expected)
			violation, err := e.Evaluate(rule, tt.merged)
			require.NoError(t, err)
			if tt.fires {
				require.NotNil(t, violation)
				assert.Equal(t, "TEST_RULE", violation.RuleCode)
				assert.Equal(t, validation.ViolationMandatory, violation.ViolationType)
				assert.Equal(t, "test rule fired", violation.ViolationDetails)
				assert.Contains(t, violation.AffectedFields, tt.field)
			} else {
				assert.Nil(t, violation)
			}
		})
	}
}

func TestEvaluateConjoinsConditions(t *testing.T) {
	e := NewRuleEvaluator()
	rule := singleConditionRule(validation.OpEquals, "productType", "LPG")
	rule.Conditions = append(rule.Conditions, validation.RuleCondition{
		FieldName:     "quantityLitres",
		Operator:      validation.OpGreater,
		ExpectedValue: 10000.0,
	})

	violation, err := e.Evaluate(rule, map[string]interface{}{
		"productType":    "LPG",
		"quantityLitres": 5000.0,
	})
	require.NoError(t, err)
	assert.Nil(t, violation, "second condition fails, rule must not fire")

	violation, err = e.Evaluate(rule, map[string]interface{}{
		"productType":    "LPG",
		"quantityLitres": 15000.0,
	})
	require.NoError(t, err)
	assert.NotNil(t, violation)
}

func TestEvaluateInactiveRule(t *testing.T) {
	e := NewRuleEvaluator()
	rule := singleConditionRule(validation.OpIsNotEmpty, "deliveryNumber", nil)
	rule.IsActive = false

	violation, err := e.Evaluate(rule, map[string]interface{}{"deliveryNumber": "DD-20260815-A1B2C3"})
	require.NoError(t, err)
	assert.Nil(t, violation)
}

func TestEvaluateRuleWithoutConditions(t *testing.T) {
	e := NewRuleEvaluator()
	rule := singleConditionRule(validation.OpEquals, "productType", "PMS")
	rule.Conditions = nil

	violation, err := e.Evaluate(rule, map[string]interface{}{})
	assert.Error(t, err)
	assert.Nil(t, violation)
}

func TestEvaluateUnknownOperator(t *testing.T) {
	e := NewRuleEvaluator()
	rule := singleConditionRule("BETWIXT", "quantityLitres", 1.0)

	violation, err := e.Evaluate(rule, map[string]interface{}{"quantityLitres": 2.0})
	assert.Error(t, err)
	assert.Nil(t, violation)
}

func TestEvaluatePredicateBypassesOperator(t *testing.T) {
	e := NewRuleEvaluator()
	rule := singleConditionRule(validation.OpEquals, "ignored", "ignored")
	rule.Conditions[0].Predicate = func(merged map[string]interface{}) bool {
		total, _ := toFloat(merged["totalValue"])
		return total > 1000
	}

	violation, err := e.Evaluate(rule, map[string]interface{}{"totalValue": 2500.0})
	require.NoError(t, err)
	assert.NotNil(t, violation)

	violation, err = e.Evaluate(rule, map[string]interface{}{"totalValue": 500.0})
	require.NoError(t, err)
	assert.Nil(t, violation)
}

func TestEvaluateInRangeMalformedBounds(t *testing.T) {
	e := NewRuleEvaluator()
	rule := singleConditionRule(validation.OpInRange, "quantityLitres", []interface{}{1.0})

	_, err := e.Evaluate(rule, map[string]interface{}{"quantityLitres": 2.0})
	assert.Error(t, err)
}
