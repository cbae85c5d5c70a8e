package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

func newTestFieldValidator(t *testing.T) *FieldValidator {
	t.Helper()
	registry, err := NewRegistry()
	require.NoError(t, err)
	return NewFieldValidator(registry)
}

func errorCodes(errs []validation.Error) []string {
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.ErrorCode)
	}
	return codes
}

func TestFieldValidatorUnknownFieldPasses(t *testing.T) {
	v := newTestFieldValidator(t)

	result := v.Validate("somethingUnregistered", 42)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestFieldValidatorRequired(t *testing.T) {
	v := newTestFieldValidator(t)

	result := v.Validate("deliveryNumber", nil)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "REQUIRED_FIELD_MISSING", result.Errors[0].ErrorCode)
	assert.Equal(t, validation.SeverityHigh, result.Errors[0].Severity)

	result = v.Validate("deliveryNumber", "")
	assert.False(t, result.IsValid)
	assert.Contains(t, errorCodes(result.Errors), "REQUIRED_FIELD_MISSING")
}

func TestFieldValidatorOptionalEmptyPasses(t *testing.T) {
	v := newTestFieldValidator(t)

	result := v.Validate("npaPermitNumber", "")
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestFieldValidatorString(t *testing.T) {
	v := newTestFieldValidator(t)

	tests := []struct {
		name     string
		field    string
		value    interface{}
		wantCode string
	}{
		{"too short", "psaNumber", "PSA", "STRING_TOO_SHORT"},
		{"pattern mismatch", "deliveryNumber", "DD-BADFORMAT", "PATTERN_MISMATCH"},
		{"non-string coerced", "customerName", 12345, "INVALID_STRING_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.field, tt.value)
			assert.False(t, result.IsValid)
			assert.Contains(t, errorCodes(result.Errors), tt.wantCode)
		})
	}
}

func TestFieldValidatorStringTooLongSuggestsTruncation(t *testing.T) {
	v := newTestFieldValidator(t)

	long := make([]byte, 60)
	for i := range long {
		long[i] = 'A'
	}

	result := v.Validate("psaNumber", string(long))
	assert.False(t, result.IsValid)
	assert.Contains(t, errorCodes(result.Errors), "STRING_TOO_LONG")
	require.NotNil(t, result.SuggestedValue)
	assert.Len(t, result.SuggestedValue.(string), 50)
}

func TestFieldValidatorCoercionSetsAutoCorrection(t *testing.T) {
	v := newTestFieldValidator(t)

	result := v.Validate("customerName", 7001)
	assert.Contains(t, errorCodes(result.Errors), "INVALID_STRING_TYPE")
	assert.Equal(t, "7001", result.AutoCorrection)
}

func TestFieldValidatorNumber(t *testing.T) {
	v := newTestFieldValidator(t)

	tests := []struct {
		name     string
		field    string
		value    interface{}
		wantCode string
	}{
		{"below minimum", "quantityLitres", 0.0, "VALUE_TOO_LOW"},
		{"negative", "quantityLitres", -5.0, "VALUE_TOO_LOW"},
		{"above maximum", "quantityLitres", 150000.0, "VALUE_TOO_HIGH"},
		{"price above cap", "unitPrice", 75.0, "VALUE_TOO_HIGH"},
		{"not a number", "unitPrice", "six cedis", "INVALID_NUMBER_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.field, tt.value)
			assert.False(t, result.IsValid)
			assert.Contains(t, errorCodes(result.Errors), tt.wantCode)
		})
	}

	result := v.Validate("quantityLitres", 5000.0)
	assert.True(t, result.IsValid)
}

func TestFieldValidatorDate(t *testing.T) {
	v := newTestFieldValidator(t)

	result := v.Validate("deliveryDate", "2026-08-15")
	assert.True(t, result.IsValid)

	result = v.Validate("deliveryDate", "not-a-date")
	assert.False(t, result.IsValid)
	assert.Contains(t, errorCodes(result.Errors), "INVALID_DATE")
}

func TestFieldValidatorAllowedValues(t *testing.T) {
	v := newTestFieldValidator(t)

	result := v.Validate("productType", "PMS")
	assert.True(t, result.IsValid)

	result = v.Validate("productType", "CRUDE")
	assert.False(t, result.IsValid)
	assert.Contains(t, errorCodes(result.Errors), "INVALID_ALLOWED_VALUE")
}

func TestFieldValidatorAccumulatesErrors(t *testing.T) {
	v := newTestFieldValidator(t)

	// Too short and pattern mismatch at once
	result := v.Validate("deliveryNumber", "DD-1")
	assert.False(t, result.IsValid)
	codes := errorCodes(result.Errors)
	assert.Contains(t, codes, "STRING_TOO_SHORT")
	assert.Contains(t, codes, "PATTERN_MISMATCH")
}
