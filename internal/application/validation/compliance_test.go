package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

type stubComplianceService struct {
	permitValid  bool
	permitErr    error
	customsValid bool
	customsErr   error
}

func (s *stubComplianceService) ValidateNPAPermit(ctx context.Context, permitNumber, productType string, quantity float64) (*port.PermitValidation, error) {
	if s.permitErr != nil {
		return nil, s.permitErr
	}
	return &port.PermitValidation{IsValid: s.permitValid, PermitType: "BULK_DISTRIBUTION"}, nil
}

func (s *stubComplianceService) ValidateCustomsEntry(ctx context.Context, entryNumber string) (*port.CustomsValidation, error) {
	if s.customsErr != nil {
		return nil, s.customsErr
	}
	return &port.CustomsValidation{IsValid: s.customsValid}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// compliantDelivery returns an imported delivery that passes every
// regulatory check: permits present, duty paid with its entry filed, taxes at
// exactly 40% of the total value.
func compliantDelivery() *entity.DailyDelivery {
	return &entity.DailyDelivery{
		DeliveryNumber:     "DD-20260815-A1B2C3",
		ProductType:        entity.ProductPMS,
		QuantityLitres:     5000,
		UnitPrice:          6.50,
		TotalValue:         32500,
		NPAPermitNumber:    "NPA-2026-00123",
		CustomsDutyPaid:    1625,
		CustomsEntryNumber: "CUS-2026-00456",
		PetroleumTaxAmount: 6500,
		EnergyFundLevy:     2600,
		RoadFundLevy:       2600,
		UPPFLevy:           1300,
	}
}

func issueCodes(issues []validation.ComplianceIssue) []string {
	codes := make([]string, 0, len(issues))
	for _, i := range issues {
		codes = append(codes, i.IssueCode)
	}
	return codes
}

func TestComplianceCleanDelivery(t *testing.T) {
	checker := NewComplianceChecker(&stubComplianceService{permitValid: true, customsValid: true}, nopLogger{})

	issues := checker.Check(context.Background(), compliantDelivery())
	assert.Empty(t, issues)
}

func TestComplianceMissingNPAPermit(t *testing.T) {
	checker := NewComplianceChecker(nil, nopLogger{})
	d := compliantDelivery()
	d.NPAPermitNumber = ""

	issues := checker.Check(context.Background(), d)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, "MISSING_NPA_PERMIT", issue.IssueCode)
	assert.Equal(t, validation.ComplianceNPA, issue.ComplianceType)
	assert.Equal(t, validation.ComplianceSeverityMajor, issue.ViolationSeverity)
	assert.Equal(t, "GHS 5,000 - GHS 50,000 fine", issue.PenaltyRisk)
	require.NotNil(t, issue.ComplianceDeadline)
}

func TestComplianceLubricantsExemptFromNPAPermit(t *testing.T) {
	checker := NewComplianceChecker(nil, nopLogger{})
	d := compliantDelivery()
	d.ProductType = entity.ProductLubricants
	d.NPAPermitNumber = ""

	issues := checker.Check(context.Background(), d)
	assert.NotContains(t, issueCodes(issues), "MISSING_NPA_PERMIT")
}

func TestComplianceRejectedNPAPermit(t *testing.T) {
	checker := NewComplianceChecker(&stubComplianceService{permitValid: false, customsValid: true}, nopLogger{})

	issues := checker.Check(context.Background(), compliantDelivery())
	require.Len(t, issues, 1)
	assert.Equal(t, "INVALID_NPA_PERMIT", issues[0].IssueCode)
}

func TestComplianceMissingCustomsEntry(t *testing.T) {
	checker := NewComplianceChecker(nil, nopLogger{})
	d := compliantDelivery()
	d.CustomsEntryNumber = ""

	issues := checker.Check(context.Background(), d)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, "MISSING_CUSTOMS_ENTRY", issue.IssueCode)
	assert.Equal(t, validation.ComplianceSeverityCritical, issue.ViolationSeverity)
}

func TestComplianceDomesticDeliverySkipsCustomsEntry(t *testing.T) {
	checker := NewComplianceChecker(nil, nopLogger{})
	d := compliantDelivery()
	d.CustomsDutyPaid = 0
	d.CustomsEntryNumber = ""

	issues := checker.Check(context.Background(), d)
	assert.NotContains(t, issueCodes(issues), "MISSING_CUSTOMS_ENTRY")
}

func TestComplianceRejectedCustomsEntry(t *testing.T) {
	checker := NewComplianceChecker(&stubComplianceService{permitValid: true, customsValid: false}, nopLogger{})

	issues := checker.Check(context.Background(), compliantDelivery())
	require.Len(t, issues, 1)
	assert.Equal(t, "INVALID_CUSTOMS_ENTRY", issues[0].IssueCode)
}

func TestComplianceAuthorityUnreachableDegradesToPass(t *testing.T) {
	svc := &stubComplianceService{
		permitErr:  errors.New("npa gateway timeout"),
		customsErr: errors.New("customs gateway timeout"),
	}
	checker := NewComplianceChecker(svc, nopLogger{})

	issues := checker.Check(context.Background(), compliantDelivery())
	assert.Empty(t, issues)
}

func TestComplianceTaxVariance(t *testing.T) {
	tests := []struct {
		name       string
		totalTaxes float64
		fires      bool
	}{
		{"exact levy model", 13000, false},
		{"within five percent", 13500, false},
		{"over variance", 15000, true},
		{"under variance", 10000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewComplianceChecker(nil, nopLogger{})
			d := compliantDelivery()
			d.PetroleumTaxAmount = tt.totalTaxes
			d.EnergyFundLevy = 0
			d.RoadFundLevy = 0
			d.UPPFLevy = 0

			issues := checker.Check(context.Background(), d)
			if tt.fires {
				require.Len(t, issues, 1)
				assert.Equal(t, "TAX_CALCULATION_VARIANCE", issues[0].IssueCode)
				assert.Equal(t, validation.ComplianceSeverityModerate, issues[0].ViolationSeverity)
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestComplianceZeroValueSkipsTaxCheck(t *testing.T) {
	checker := NewComplianceChecker(nil, nopLogger{})
	d := compliantDelivery()
	d.TotalValue = 0
	d.PetroleumTaxAmount = 0
	d.EnergyFundLevy = 0
	d.RoadFundLevy = 0
	d.UPPFLevy = 0

	issues := checker.Check(context.Background(), d)
	assert.Empty(t, issues)
}
