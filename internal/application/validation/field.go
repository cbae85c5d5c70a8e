package validation

import (
	"fmt"
	"math"
	"reflect"

	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

// FieldValidator checks a single value against its field rule. All checks
// run and accumulate; the first failure does not short-circuit the rest.
type FieldValidator struct {
	registry *Registry
}

func NewFieldValidator(registry *Registry) *FieldValidator {
	return &FieldValidator{registry: registry}
}

// Validate applies the rule registered for fieldName to value. Unknown
// fields validate as passing, there is nothing to check them against.
func (v *FieldValidator) Validate(fieldName string, value interface{}) validation.FieldResult {
	result := validation.FieldResult{IsValid: true}

	rule := v.registry.FieldRule(fieldName)
	if rule == nil {
		return result
	}

	if isEmptyValue(value) {
		if rule.Required {
			result.Errors = append(result.Errors, validation.Error{
				ErrorCode:          "REQUIRED_FIELD_MISSING",
				ErrorType:          validation.ErrorTypeRequiredField,
				FieldName:          fieldName,
				ErrorMessage:       fmt.Sprintf("%s is required", fieldName),
				Severity:           validation.SeverityHigh,
				CurrentValue:       value,
				CorrectionAction:   fmt.Sprintf("Provide a value for %s", fieldName),
				ImpactDescription:  "Record cannot be processed without this field",
				ValidationCategory: "FIELD_VALIDATION",
			})
			result.IsValid = false
		}
		// Optional fields with no value have nothing further to check.
		return result
	}

	switch rule.DataType {
	case validation.TypeString:
		v.checkString(rule, value, &result)
	case validation.TypeNumber:
		v.checkNumber(rule, value, &result)
	case validation.TypeDate:
		v.checkDate(rule, value, &result)
	case validation.TypeArray:
		v.checkArray(rule, value, &result)
	}

	if len(rule.AllowedValues) > 0 {
		v.checkAllowedValues(rule, value, &result)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *FieldValidator) checkString(rule *validation.FieldRule, value interface{}, result *validation.FieldResult) {
	s, ok := value.(string)
	if !ok {
		s = stringify(value)
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "INVALID_STRING_TYPE",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be a string", rule.FieldName),
			Severity:           validation.SeverityMedium,
			CurrentValue:       value,
			ExpectedValue:      s,
			CorrectionAction:   "Convert value to text",
			ImpactDescription:  "Value was coerced to text for further checks",
			ValidationCategory: "FIELD_VALIDATION",
		})
		result.AutoCorrection = s
	}

	if rule.MinLength > 0 && len(s) < rule.MinLength {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "STRING_TOO_SHORT",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be at least %d characters", rule.FieldName, rule.MinLength),
			Severity:           validation.SeverityMedium,
			CurrentValue:       s,
			CorrectionAction:   fmt.Sprintf("Extend %s to at least %d characters", rule.FieldName, rule.MinLength),
			ImpactDescription:  "Value is below the minimum length for this field",
			ValidationCategory: "FIELD_VALIDATION",
		})
	}

	if rule.MaxLength > 0 && len(s) > rule.MaxLength {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "STRING_TOO_LONG",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be at most %d characters", rule.FieldName, rule.MaxLength),
			Severity:           validation.SeverityMedium,
			CurrentValue:       s,
			CorrectionAction:   fmt.Sprintf("Shorten %s to at most %d characters", rule.FieldName, rule.MaxLength),
			ImpactDescription:  "Value exceeds the maximum length for this field",
			ValidationCategory: "FIELD_VALIDATION",
		})
		result.SuggestedValue = s[:rule.MaxLength]
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "PATTERN_MISMATCH",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s does not match the required format", rule.FieldName),
			Severity:           validation.SeverityHigh,
			CurrentValue:       s,
			ExpectedValue:      rule.Pattern.String(),
			CorrectionAction:   fmt.Sprintf("Reformat %s to match %s", rule.FieldName, rule.Pattern.String()),
			ImpactDescription:  "Malformed identifiers break downstream reconciliation",
			ValidationCategory: "FIELD_VALIDATION",
		})
	}
}

func (v *FieldValidator) checkNumber(rule *validation.FieldRule, value interface{}, result *validation.FieldResult) {
	n, ok := toFloat(value)
	if !ok || math.IsNaN(n) {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "INVALID_NUMBER_TYPE",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be a valid number", rule.FieldName),
			Severity:           validation.SeverityHigh,
			CurrentValue:       value,
			CorrectionAction:   fmt.Sprintf("Provide a numeric value for %s", rule.FieldName),
			ImpactDescription:  "Non-numeric value cannot participate in calculations",
			ValidationCategory: "FIELD_VALIDATION",
		})
		return
	}

	if rule.MinValue != nil && n < *rule.MinValue {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "VALUE_TOO_LOW",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be at least %v", rule.FieldName, *rule.MinValue),
			Severity:           validation.SeverityMedium,
			CurrentValue:       n,
			ExpectedValue:      *rule.MinValue,
			CorrectionAction:   fmt.Sprintf("Increase %s to at least %v", rule.FieldName, *rule.MinValue),
			ImpactDescription:  "Value is below the accepted range",
			ValidationCategory: "FIELD_VALIDATION",
		})
	}

	if rule.MaxValue != nil && n > *rule.MaxValue {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "VALUE_TOO_HIGH",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be at most %v", rule.FieldName, *rule.MaxValue),
			Severity:           validation.SeverityMedium,
			CurrentValue:       n,
			ExpectedValue:      *rule.MaxValue,
			CorrectionAction:   fmt.Sprintf("Reduce %s to at most %v", rule.FieldName, *rule.MaxValue),
			ImpactDescription:  "Value is above the accepted range",
			ValidationCategory: "FIELD_VALIDATION",
		})
	}
}

func (v *FieldValidator) checkDate(rule *validation.FieldRule, value interface{}, result *validation.FieldResult) {
	if _, ok := toDate(value); !ok {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "INVALID_DATE",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be a valid date", rule.FieldName),
			Severity:           validation.SeverityHigh,
			CurrentValue:       value,
			CorrectionAction:   fmt.Sprintf("Provide %s as an ISO 8601 date", rule.FieldName),
			ImpactDescription:  "Invalid dates break period reporting and SLA tracking",
			ValidationCategory: "FIELD_VALIDATION",
		})
	}
}

func (v *FieldValidator) checkArray(rule *validation.FieldRule, value interface{}, result *validation.FieldResult) {
	kind := reflect.ValueOf(value).Kind()
	if kind != reflect.Slice && kind != reflect.Array {
		result.Errors = append(result.Errors, validation.Error{
			ErrorCode:          "INVALID_ARRAY_TYPE",
			ErrorType:          validation.ErrorTypeInvalidFormat,
			FieldName:          rule.FieldName,
			ErrorMessage:       fmt.Sprintf("%s must be a list", rule.FieldName),
			Severity:           validation.SeverityMedium,
			CurrentValue:       value,
			CorrectionAction:   fmt.Sprintf("Provide %s as a list of values", rule.FieldName),
			ImpactDescription:  "Value cannot be iterated by downstream consumers",
			ValidationCategory: "FIELD_VALIDATION",
		})
	}
}

func (v *FieldValidator) checkAllowedValues(rule *validation.FieldRule, value interface{}, result *validation.FieldResult) {
	for _, allowed := range rule.AllowedValues {
		if looseEqual(value, allowed) {
			return
		}
	}
	result.Errors = append(result.Errors, validation.Error{
		ErrorCode:          "INVALID_ALLOWED_VALUE",
		ErrorType:          validation.ErrorTypeInvalidFormat,
		FieldName:          rule.FieldName,
		ErrorMessage:       fmt.Sprintf("%s must be one of the allowed values", rule.FieldName),
		Severity:           validation.SeverityMedium,
		CurrentValue:       value,
		ExpectedValue:      rule.AllowedValues,
		CorrectionAction:   fmt.Sprintf("Choose a valid value for %s", rule.FieldName),
		ImpactDescription:  "Unknown value cannot be mapped to a product grade",
		ValidationCategory: "FIELD_VALIDATION",
	})
}
