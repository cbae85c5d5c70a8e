package validation

import "regexp"

// Field data types a rule can declare
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeDate    = "date"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// FieldRule declares the constraints for a single delivery field. Rules are
// immutable and defined at process start.
type FieldRule struct {
	FieldName              string
	Required               bool
	DataType               string
	MinLength              int
	MaxLength              int
	MinValue               *float64
	MaxValue               *float64
	Pattern                *regexp.Regexp
	AllowedValues          []interface{}
	BusinessRules          []string
	ComplianceRequirements []string
}

// Business rule types
const (
	RuleTypeValidation  = "VALIDATION"
	RuleTypeCalculation = "CALCULATION"
	RuleTypeWorkflow    = "WORKFLOW"
	RuleTypeCompliance  = "COMPLIANCE"
)

// Condition types
const (
	ConditionFieldValue   = "FIELD_VALUE"
	ConditionCalculation  = "CALCULATION"
	ConditionExternalData = "EXTERNAL_DATA"
	ConditionDateRange    = "DATE_RANGE"
	ConditionComplexLogic = "COMPLEX_LOGIC"
)

// Comparison operators for field-value conditions
const (
	OpEquals     = "EQUALS"
	OpNotEquals  = "NOT_EQUALS"
	OpGreater    = "GREATER_THAN"
	OpLess       = "LESS_THAN"
	OpContains   = "CONTAINS"
	OpInRange    = "IN_RANGE"
	OpIsEmpty    = "IS_EMPTY"
	OpIsNotEmpty = "IS_NOT_EMPTY"
)

// Action types a fired rule can carry
const (
	ActionError       = "ERROR"
	ActionWarning     = "WARNING"
	ActionAutoCorrect = "AUTO_CORRECT"
	ActionNotify      = "NOTIFY"
	ActionLog         = "LOG"
	ActionCalculate   = "CALCULATE"
)

// Applicable scenario tags
const (
	ScenarioCreate      = "CREATE"
	ScenarioUpdate      = "UPDATE"
	ScenarioCalculation = "CALCULATION"
)

// PredicateFunc evaluates a custom condition against the merged
// record/context map, bypassing the operator table.
type PredicateFunc func(merged map[string]interface{}) bool

// RuleCondition is one conjunct of a business rule. A rule fires only when
// every condition evaluates true.
type RuleCondition struct {
	ConditionType string
	FieldName     string
	Operator      string
	ExpectedValue interface{}
	Predicate     PredicateFunc
}

// RuleAction describes what happens when a rule fires
type RuleAction struct {
	ActionType             string
	ErrorMessage           string
	CorrectionAction       string
	CalculationFormula     string
	NotificationRecipients []string
}

// BusinessRule is a conditional rule evaluated against a full delivery
// record plus caller context. A rule with zero conditions is a configuration
// error, not a silently-passing rule.
type BusinessRule struct {
	RuleID              string
	RuleName            string
	RuleDescription     string
	RuleType            string
	Conditions          []RuleCondition
	Actions             []RuleAction
	IsActive            bool
	Priority            int
	ApplicableScenarios []string
}

// AffectedFields returns the field names referenced by the rule's conditions
func (r *BusinessRule) AffectedFields() []string {
	var fields []string
	for _, c := range r.Conditions {
		if c.FieldName != "" {
			fields = append(fields, c.FieldName)
		}
	}
	return fields
}

// CorrectionSteps collects the correction actions declared on the rule
func (r *BusinessRule) CorrectionSteps() []string {
	var steps []string
	for _, a := range r.Actions {
		if a.CorrectionAction != "" {
			steps = append(steps, a.CorrectionAction)
		}
	}
	return steps
}
