package validation

import (
	"fmt"
	"strings"

	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

// RuleEvaluator evaluates business rules against a merged record/context
// map. All conditions of a rule are conjoined: the rule fires only when
// every condition holds.
type RuleEvaluator struct{}

func NewRuleEvaluator() *RuleEvaluator {
	return &RuleEvaluator{}
}

// Evaluate returns a violation when the rule fires, nil when it passes.
// Rules with no conditions are rejected rather than silently matched.
func (e *RuleEvaluator) Evaluate(rule *validation.BusinessRule, merged map[string]interface{}) (*validation.BusinessRuleViolation, error) {
	if !rule.IsActive {
		return nil, nil
	}
	if len(rule.Conditions) == 0 {
		return nil, fmt.Errorf("business rule %s has no conditions", rule.RuleID)
	}

	for _, cond := range rule.Conditions {
		ok, err := e.evaluateCondition(cond, merged)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.RuleID, err)
		}
		if !ok {
			return nil, nil
		}
	}

	violation := &validation.BusinessRuleViolation{
		RuleCode:          rule.RuleID,
		RuleName:          rule.RuleName,
		RuleDescription:   rule.RuleDescription,
		ViolationType:     validation.ViolationMandatory,
		AffectedFields:    rule.AffectedFields(),
		ViolationDetails:  e.violationDetails(rule),
		BusinessImpact:    "Rule violation blocks downstream processing until corrected",
		CorrectionSteps:   rule.CorrectionSteps(),
		ExemptionPossible: false,
	}
	return violation, nil
}

func (e *RuleEvaluator) violationDetails(rule *validation.BusinessRule) string {
	for _, a := range rule.Actions {
		if a.ErrorMessage != "" {
			return a.ErrorMessage
		}
	}
	return rule.RuleDescription
}

func (e *RuleEvaluator) evaluateCondition(cond validation.RuleCondition, merged map[string]interface{}) (bool, error) {
	// A custom predicate bypasses the operator table entirely.
	if cond.Predicate != nil {
		return cond.Predicate(merged), nil
	}

	value := merged[cond.FieldName]

	switch cond.Operator {
	case validation.OpEquals:
		return looseEqual(value, cond.ExpectedValue), nil
	case validation.OpNotEquals:
		return !looseEqual(value, cond.ExpectedValue), nil
	case validation.OpGreater:
		return e.compareNumeric(value, cond.ExpectedValue, func(a, b float64) bool { return a > b })
	case validation.OpLess:
		return e.compareNumeric(value, cond.ExpectedValue, func(a, b float64) bool { return a < b })
	case validation.OpIsEmpty:
		return isEmptyValue(value), nil
	case validation.OpIsNotEmpty:
		return !isEmptyValue(value), nil
	case validation.OpContains:
		return strings.Contains(stringify(value), stringify(cond.ExpectedValue)), nil
	case validation.OpInRange:
		return e.inRange(value, cond.ExpectedValue)
	default:
		return false, fmt.Errorf("unknown operator %q", cond.Operator)
	}
}

func (e *RuleEvaluator) compareNumeric(value, expected interface{}, cmp func(a, b float64) bool) (bool, error) {
	a, okA := toFloat(value)
	b, okB := toFloat(expected)
	if !okA || !okB {
		return false, nil
	}
	return cmp(a, b), nil
}

// inRange expects the condition value to carry a two-element [min, max]
// bound, inclusive on both ends.
func (e *RuleEvaluator) inRange(value, expected interface{}) (bool, error) {
	n, ok := toFloat(value)
	if !ok {
		return false, nil
	}

	bounds, ok := expected.([]float64)
	if !ok {
		raw, okRaw := expected.([]interface{})
		if !okRaw || len(raw) != 2 {
			return false, fmt.Errorf("IN_RANGE expects a [min, max] pair")
		}
		lo, ok1 := toFloat(raw[0])
		hi, ok2 := toFloat(raw[1])
		if !ok1 || !ok2 {
			return false, fmt.Errorf("IN_RANGE expects numeric bounds")
		}
		bounds = []float64{lo, hi}
	}
	if len(bounds) != 2 {
		return false, fmt.Errorf("IN_RANGE expects a [min, max] pair")
	}
	return n >= bounds[0] && n <= bounds[1], nil
}
