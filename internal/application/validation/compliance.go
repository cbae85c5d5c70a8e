package validation

import (
	"context"
	"math"
	"time"

	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

// Ghana petroleum levy model: statutory taxes and levies approximate 40% of
// the delivery value, with a 5% accepted variance.
const (
	expectedTaxRate      = 0.40
	taxVarianceTolerance = 0.05
)

// ComplianceChecker runs the regulatory checks over a delivery. It never
// returns an error: an unreachable authority system degrades to a pass.
type ComplianceChecker struct {
	compliance port.ComplianceService
	logger     Logger
}

// Logger is the narrow logging surface the validation package needs
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

func NewComplianceChecker(compliance port.ComplianceService, logger Logger) *ComplianceChecker {
	return &ComplianceChecker{compliance: compliance, logger: logger}
}

// Check returns the compliance issues found on the delivery
func (c *ComplianceChecker) Check(ctx context.Context, d *entity.DailyDelivery) []validation.ComplianceIssue {
	var issues []validation.ComplianceIssue

	if issue := c.checkNPAPermit(ctx, d); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := c.checkCustomsEntry(ctx, d); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := c.checkTaxCalculation(d); issue != nil {
		issues = append(issues, *issue)
	}

	return issues
}

// checkNPAPermit requires an NPA permit for every product grade except
// lubricants, which are exempt from permit control.
func (c *ComplianceChecker) checkNPAPermit(ctx context.Context, d *entity.DailyDelivery) *validation.ComplianceIssue {
	if d.ProductType == entity.ProductLubricants {
		return nil
	}

	if d.NPAPermitNumber == "" {
		deadline := time.Now().AddDate(0, 0, 7)
		return &validation.ComplianceIssue{
			ComplianceType:        validation.ComplianceNPA,
			IssueCode:             "MISSING_NPA_PERMIT",
			IssueDescription:      "NPA permit number is required for petroleum product deliveries",
			ComplianceRequirement: "National Petroleum Authority Act 2005 (Act 691)",
			ViolationSeverity:     validation.ComplianceSeverityMajor,
			RegulatoryRisk:        "Delivery may be suspended by NPA inspectors",
			RemedialActions:       []string{"Obtain NPA permit before delivery", "Record the permit number on the delivery"},
			ComplianceDeadline:    &deadline,
			PenaltyRisk:           "GHS 5,000 - GHS 50,000 fine",
		}
	}

	if c.compliance == nil {
		return nil
	}

	result, err := c.compliance.ValidateNPAPermit(ctx, d.NPAPermitNumber, d.ProductType, d.QuantityLitres)
	if err != nil {
		// Authority system unreachable: pass rather than guess.
		c.logger.Warn("npa permit validation unavailable", "permit", d.NPAPermitNumber, "error", err)
		return nil
	}
	if !result.IsValid {
		deadline := time.Now().AddDate(0, 0, 7)
		return &validation.ComplianceIssue{
			ComplianceType:        validation.ComplianceNPA,
			IssueCode:             "INVALID_NPA_PERMIT",
			IssueDescription:      "NPA permit number was rejected by the authority system",
			ComplianceRequirement: "National Petroleum Authority Act 2005 (Act 691)",
			ViolationSeverity:     validation.ComplianceSeverityMajor,
			RegulatoryRisk:        "Delivery may be suspended by NPA inspectors",
			RemedialActions:       []string{"Verify the permit number with NPA", "Renew the permit if expired"},
			ComplianceDeadline:    &deadline,
			PenaltyRisk:           "GHS 5,000 - GHS 50,000 fine",
		}
	}
	return nil
}

// checkCustomsEntry applies only to imports, identified by a customs duty
// having been paid. Domestic deliveries carry no entry number.
func (c *ComplianceChecker) checkCustomsEntry(ctx context.Context, d *entity.DailyDelivery) *validation.ComplianceIssue {
	if d.CustomsDutyPaid <= 0 {
		return nil
	}

	if d.CustomsEntryNumber == "" {
		deadline := time.Now().AddDate(0, 0, 3)
		return &validation.ComplianceIssue{
			ComplianceType:        validation.ComplianceCustoms,
			IssueCode:             "MISSING_CUSTOMS_ENTRY",
			IssueDescription:      "Customs entry number is missing for imported petroleum products",
			ComplianceRequirement: "Customs Act 2015 (Act 891)",
			ViolationSeverity:     validation.ComplianceSeverityCritical,
			RegulatoryRisk:        "Goods may be seized pending customs clearance",
			RemedialActions:       []string{"File customs entry with GRA Customs Division", "Attach the entry number to the delivery"},
			ComplianceDeadline:    &deadline,
		}
	}

	if c.compliance == nil {
		return nil
	}

	result, err := c.compliance.ValidateCustomsEntry(ctx, d.CustomsEntryNumber)
	if err != nil {
		c.logger.Warn("customs entry validation unavailable", "entry", d.CustomsEntryNumber, "error", err)
		return nil
	}
	if !result.IsValid {
		deadline := time.Now().AddDate(0, 0, 3)
		return &validation.ComplianceIssue{
			ComplianceType:        validation.ComplianceCustoms,
			IssueCode:             "INVALID_CUSTOMS_ENTRY",
			IssueDescription:      "Customs entry number was rejected by the customs system",
			ComplianceRequirement: "Customs Act 2015 (Act 891)",
			ViolationSeverity:     validation.ComplianceSeverityCritical,
			RegulatoryRisk:        "Goods may be seized pending customs clearance",
			RemedialActions:       []string{"Verify the entry number with GRA Customs Division"},
			ComplianceDeadline:    &deadline,
		}
	}
	return nil
}

// checkTaxCalculation compares the declared tax components against the
// simplified levy model.
func (c *ComplianceChecker) checkTaxCalculation(d *entity.DailyDelivery) *validation.ComplianceIssue {
	expected := d.TotalValue * expectedTaxRate
	if expected <= 0 {
		return nil
	}

	variance := math.Abs(d.TotalTaxes()-expected) / expected
	if variance <= taxVarianceTolerance {
		return nil
	}

	deadline := time.Now().AddDate(0, 0, 14)
	return &validation.ComplianceIssue{
		ComplianceType:        validation.ComplianceTax,
		IssueCode:             "TAX_CALCULATION_VARIANCE",
		IssueDescription:      "Declared taxes and levies deviate from the statutory levy model",
		ComplianceRequirement: "Energy Sector Levies Act 2015 (Act 899)",
		ViolationSeverity:     validation.ComplianceSeverityModerate,
		RegulatoryRisk:        "Levy reconciliation may be queried during GRA audit",
		RemedialActions:       []string{"Recompute statutory levies for the delivered quantity", "Correct the tax component amounts"},
		ComplianceDeadline:    &deadline,
	}
}
