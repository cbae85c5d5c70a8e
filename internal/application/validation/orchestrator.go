package validation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/omcsuite/daily-delivery/internal/application/dispatcher"
	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/event"
	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

// Score deductions per finding severity
const (
	deductErrorCritical = 25
	deductErrorHigh     = 15
	deductErrorMedium   = 10
	deductErrorLow      = 5

	deductComplianceCritical = 20
	deductComplianceMajor    = 15
	deductComplianceModerate = 10
	deductComplianceMinor    = 5

	deductPerViolation = 5
)

// Validity threshold: a delivery is valid when it has no critical findings
// and scores at least this value.
const validityThreshold = 70

// Price variance above the market reference that triggers a warning
const priceVarianceTolerance = 0.10

// Deliveries above this value trigger a credit check when the caller asks
// for one.
const creditCheckThreshold = 10000

// largeDeliveryLitres marks quantities that warrant logistics review
const largeDeliveryLitres = 40000

// Context carries per-request validation options
type Context struct {
	UserID           string
	Scenario         string
	CheckCreditLimit bool
	Extra            map[string]interface{}
}

// Orchestrator runs the full validation pipeline over a delivery record and
// aggregates the findings into a scored result. It never returns an error:
// internal faults degrade to a failed result with a system error finding.
type Orchestrator struct {
	registry   *Registry
	fields     *FieldValidator
	rules      *RuleEvaluator
	compliance *ComplianceChecker
	quality    *QualityAssessor
	market     port.MarketDataService
	fleet      port.FleetService
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// OrchestratorOption configures optional collaborators
type OrchestratorOption func(*Orchestrator)

// WithMarketData wires the market data collaborator used by the
// price-variance and credit checks.
func WithMarketData(svc port.MarketDataService) OrchestratorOption {
	return func(o *Orchestrator) { o.market = svc }
}

// WithFleet wires the fleet collaborator used by the vehicle/driver check
func WithFleet(svc port.FleetService) OrchestratorOption {
	return func(o *Orchestrator) { o.fleet = svc }
}

// WithDispatcher wires the event dispatcher; completed validations are
// published asynchronously.
func WithDispatcher(d dispatcher.Dispatcher) OrchestratorOption {
	return func(o *Orchestrator) { o.dispatcher = d }
}

func NewOrchestrator(registry *Registry, complianceSvc port.ComplianceService, logger Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		fields:     NewFieldValidator(registry),
		rules:      NewRuleEvaluator(),
		compliance: NewComplianceChecker(complianceSvc, logger),
		quality:    NewQualityAssessor(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ValidateField validates a single field value against its registered rule
func (o *Orchestrator) ValidateField(fieldName string, value interface{}) validation.FieldResult {
	return o.fields.Validate(fieldName, value)
}

// ValidateDelivery runs the full pipeline over one delivery
func (o *Orchestrator) ValidateDelivery(ctx context.Context, d *entity.DailyDelivery, vctx Context) (result *validation.Result) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("validation pipeline panic", "delivery", d.ID, "panic", r)
			result = o.systemFailureResult(started, vctx, fmt.Sprintf("%v", r))
		}
	}()

	result = &validation.Result{IsValid: true, Score: 100}
	record := d.AsRecord()
	merged := o.mergeContext(record, vctx)

	totalChecks := 0
	failedChecks := 0

	// Field rules
	for _, rule := range o.registry.FieldRules() {
		totalChecks++
		fr := o.fields.Validate(rule.FieldName, record[rule.FieldName])
		if !fr.IsValid {
			failedChecks++
		}
		result.Errors = append(result.Errors, fr.Errors...)
		result.Warnings = append(result.Warnings, fr.Warnings...)
	}

	// Business rules
	for i := range o.registry.BusinessRules() {
		rule := &o.registry.BusinessRules()[i]
		totalChecks++
		violation, err := o.rules.Evaluate(rule, merged)
		if err != nil {
			failedChecks++
			result.Errors = append(result.Errors, validation.Error{
				ErrorCode:          "RULE_EVALUATION_FAILED",
				ErrorType:          validation.ErrorTypeSystem,
				ErrorMessage:       err.Error(),
				Severity:           validation.SeverityHigh,
				CorrectionAction:   "Review the business rule configuration",
				ImpactDescription:  "Rule could not be evaluated against the record",
				ValidationCategory: "BUSINESS_RULES",
			})
			continue
		}
		if violation != nil {
			failedChecks++
			result.BusinessRuleViolations = append(result.BusinessRuleViolations, *violation)
			result.Errors = append(result.Errors, validation.Error{
				ErrorCode:          violation.RuleCode,
				ErrorType:          validation.ErrorTypeBusinessRule,
				ErrorMessage:       violation.ViolationDetails,
				Severity:           validation.SeverityHigh,
				CorrectionAction:   firstOrEmpty(violation.CorrectionSteps),
				ImpactDescription:  violation.BusinessImpact,
				ValidationCategory: "BUSINESS_RULES",
			})
		}
	}

	// Data quality
	qualityIssues := o.quality.Assess(d)
	totalChecks += len(optionalQualityFields) + 3
	failedChecks += len(qualityIssues)
	result.DataQualityIssues = append(result.DataQualityIssues, qualityIssues...)

	// Compliance
	complianceIssues := o.compliance.Check(ctx, d)
	totalChecks += 3
	failedChecks += len(complianceIssues)
	result.ComplianceIssues = append(result.ComplianceIssues, complianceIssues...)

	// Cross-field checks
	crossTotal, crossFailed := o.crossFieldChecks(ctx, d, result)
	totalChecks += crossTotal
	failedChecks += crossFailed

	// External data checks, best effort
	extTotal, extFailed := o.externalChecks(ctx, d, vctx, result)
	totalChecks += extTotal
	failedChecks += extFailed

	o.computeScore(result)
	o.generateRecommendations(result)
	o.finalizeSummary(result, started, vctx, totalChecks, failedChecks)

	o.publishValidationCompleted(ctx, d, result)
	return result
}

// ValidateDeliveryBatch validates each delivery independently and derives
// batch-level statistics and recommendations.
func (o *Orchestrator) ValidateDeliveryBatch(ctx context.Context, deliveries []*entity.DailyDelivery, vctx Context) *validation.BatchResult {
	started := time.Now()

	batch := &validation.BatchResult{
		TotalValidated: len(deliveries),
		Results:        make([]validation.DeliveryEntry, 0, len(deliveries)),
	}

	scoreSum := 0
	errorCodeCounts := make(map[string]int)
	complianceCount := 0
	qualityCount := 0

	for _, d := range deliveries {
		r := o.ValidateDelivery(ctx, d, vctx)
		batch.Results = append(batch.Results, validation.DeliveryEntry{DeliveryID: d.ID, Result: r})

		if r.IsValid {
			batch.ValidCount++
		} else {
			batch.InvalidCount++
		}
		scoreSum += r.Score
		complianceCount += len(r.ComplianceIssues)
		qualityCount += len(r.DataQualityIssues)
		seen := make(map[string]bool)
		for _, e := range r.Errors {
			if !seen[e.ErrorCode] {
				seen[e.ErrorCode] = true
				errorCodeCounts[e.ErrorCode]++
			}
		}
	}

	if len(deliveries) > 0 {
		batch.AverageScore = int(math.Round(float64(scoreSum) / float64(len(deliveries))))
	}
	batch.OverallValid = batch.InvalidCount == 0

	finished := time.Now()
	batch.BatchSummary = validation.BatchSummary{
		BatchID:             uuid.NewString(),
		StartedAt:           started,
		FinishedAt:          finished,
		TotalProcessingTime: finished.Sub(started),
		DeliveriesProcessed: len(deliveries),
		ValidDeliveries:     batch.ValidCount,
		InvalidDeliveries:   batch.InvalidCount,
		AverageScore:        batch.AverageScore,
		CommonIssues:        commonIssues(errorCodeCounts, len(deliveries)),
		RecommendedActions:  batchRecommendations(batch, complianceCount, qualityCount),
	}

	if o.dispatcher != nil {
		o.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeValidationBatchCompleted, batch.BatchSummary.BatchID, map[string]interface{}{
			"deliveries_processed": len(deliveries),
			"valid_count":          batch.ValidCount,
			"invalid_count":        batch.InvalidCount,
			"average_score":        batch.AverageScore,
		}))
	}

	return batch
}

func (o *Orchestrator) mergeContext(record map[string]interface{}, vctx Context) map[string]interface{} {
	merged := make(map[string]interface{}, len(record)+len(vctx.Extra)+2)
	for k, v := range record {
		merged[k] = v
	}
	for k, v := range vctx.Extra {
		merged[k] = v
	}
	if vctx.UserID != "" {
		merged["userId"] = vctx.UserID
	}
	if vctx.Scenario != "" {
		merged["scenario"] = vctx.Scenario
	}
	return merged
}

func (o *Orchestrator) crossFieldChecks(ctx context.Context, d *entity.DailyDelivery, result *validation.Result) (total, failed int) {
	// Large quantity review
	total++
	if d.QuantityLitres > largeDeliveryLitres {
		failed++
		result.Warnings = append(result.Warnings, validation.Warning{
			WarningCode:       "LARGE_DELIVERY_QUANTITY",
			WarningType:       validation.WarningTypeBusinessLogic,
			FieldName:         "quantityLitres",
			WarningMessage:    fmt.Sprintf("Delivery quantity %.2f litres exceeds %d litres", d.QuantityLitres, largeDeliveryLitres),
			CurrentValue:      d.QuantityLitres,
			RecommendedAction: "Confirm the quantity and split the delivery if appropriate",
			PotentialImpact:   "Large single deliveries strain discharge logistics",
		})
	}

	// LPG handling requirements
	total++
	if d.ProductType == entity.ProductLPG && d.SpecialHandlingRequirements == "" {
		failed++
		result.Warnings = append(result.Warnings, validation.Warning{
			WarningCode:       "LPG_HANDLING_UNSPECIFIED",
			WarningType:       validation.WarningTypeSecurity,
			FieldName:         "specialHandlingRequirements",
			WarningMessage:    "LPG delivery has no special handling requirements recorded",
			RecommendedAction: "Record pressure and safety handling requirements for LPG",
			PotentialImpact:   "Missing handling instructions increase safety risk at discharge",
		})
	}

	// Vehicle/driver pairing, best effort
	if o.fleet != nil && d.VehicleRegistrationNumber != "" && d.DriverID != "" {
		total++
		ok, err := o.fleet.ValidateVehicleDriver(ctx, d.VehicleRegistrationNumber, d.DriverID)
		if err != nil {
			o.logger.Warn("fleet validation unavailable", "vehicle", d.VehicleRegistrationNumber, "error", err)
		} else if !ok {
			failed++
			result.Warnings = append(result.Warnings, validation.Warning{
				WarningCode:       "VEHICLE_DRIVER_MISMATCH",
				WarningType:       validation.WarningTypeDataQuality,
				FieldName:         "vehicleRegistrationNumber",
				WarningMessage:    "Driver is not assigned to the recorded vehicle",
				CurrentValue:      d.VehicleRegistrationNumber,
				RecommendedAction: "Verify the vehicle and driver assignment with the transporter",
				PotentialImpact:   "Unverified pairings weaken the delivery audit trail",
			})
		}
	}

	return total, failed
}

func (o *Orchestrator) externalChecks(ctx context.Context, d *entity.DailyDelivery, vctx Context, result *validation.Result) (total, failed int) {
	if o.market == nil {
		return 0, 0
	}

	// Market price variance
	total++
	if ref, err := o.market.ReferencePrice(ctx, d.ProductType); err != nil {
		o.logger.Warn("reference price unavailable", "product", d.ProductType, "error", err)
	} else if ref > 0 {
		variance := math.Abs(d.UnitPrice-ref) / ref
		if variance > priceVarianceTolerance {
			failed++
			result.Warnings = append(result.Warnings, validation.Warning{
				WarningCode:       "PRICE_VARIANCE",
				WarningType:       validation.WarningTypeBusinessLogic,
				FieldName:         "unitPrice",
				WarningMessage:    fmt.Sprintf("Unit price %.2f deviates more than %.0f%% from the reference price %.2f", d.UnitPrice, priceVarianceTolerance*100, ref),
				CurrentValue:      d.UnitPrice,
				RecommendedValue:  ref,
				RecommendedAction: "Confirm the negotiated price against the NPA indicative price",
				PotentialImpact:   "Off-market pricing may indicate a data entry error",
			})
		}
	}

	// Credit exposure, only when the caller asks for it
	if vctx.CheckCreditLimit && d.TotalValue > creditCheckThreshold {
		total++
		ok, err := o.market.CheckCreditLimit(ctx, d.CustomerID, d.TotalValue)
		if err != nil {
			o.logger.Warn("credit check unavailable", "customer", d.CustomerID, "error", err)
		} else if !ok {
			failed++
			result.Warnings = append(result.Warnings, validation.Warning{
				WarningCode:       "CREDIT_LIMIT_EXCEEDED",
				WarningType:       validation.WarningTypeBusinessLogic,
				FieldName:         "totalValue",
				WarningMessage:    "Delivery value exceeds the customer's available credit",
				CurrentValue:      d.TotalValue,
				RecommendedAction: "Require prepayment or obtain credit approval before delivery",
				PotentialImpact:   "Delivery may become unrecoverable receivable",
			})
		}
	}

	return total, failed
}

// computeScore applies the deduction table and fills CriticalIssues
func (o *Orchestrator) computeScore(result *validation.Result) {
	score := 100.0

	for _, e := range result.Errors {
		switch e.Severity {
		case validation.SeverityCritical:
			score -= deductErrorCritical
			result.CriticalIssues = append(result.CriticalIssues, e)
		case validation.SeverityHigh:
			score -= deductErrorHigh
		case validation.SeverityMedium:
			score -= deductErrorMedium
		case validation.SeverityLow:
			score -= deductErrorLow
		}
	}

	for _, c := range result.ComplianceIssues {
		switch c.ViolationSeverity {
		case validation.ComplianceSeverityCritical:
			score -= deductComplianceCritical
		case validation.ComplianceSeverityMajor:
			score -= deductComplianceMajor
		case validation.ComplianceSeverityModerate:
			score -= deductComplianceModerate
		case validation.ComplianceSeverityMinor:
			score -= deductComplianceMinor
		}
	}

	for _, q := range result.DataQualityIssues {
		score -= float64(100-q.DataQualityScore) / 10
	}

	score -= float64(len(result.BusinessRuleViolations) * deductPerViolation)

	if score < 0 {
		score = 0
	}
	result.Score = int(math.Round(score))
	result.IsValid = len(result.CriticalIssues) == 0 && result.Score >= validityThreshold
}

func (o *Orchestrator) generateRecommendations(result *validation.Result) {
	if len(result.CriticalIssues) > 0 {
		steps := make([]string, 0, len(result.CriticalIssues))
		for _, issue := range result.CriticalIssues {
			if issue.CorrectionAction != "" {
				steps = append(steps, issue.CorrectionAction)
			}
		}
		result.Recommendations = append(result.Recommendations, validation.Recommendation{
			RecommendationType:   validation.RecommendationDataImprovement,
			Priority:             validation.RecommendationPriorityUrgent,
			Title:                "Resolve critical validation errors",
			Description:          "The delivery record contains critical errors that block processing",
			ExpectedBenefit:      "Delivery becomes eligible for approval",
			ImplementationEffort: "LOW",
			ImplementationSteps:  steps,
			EstimatedTimeframe:   "Immediate",
		})
	}

	if len(result.ComplianceIssues) > 0 {
		result.Recommendations = append(result.Recommendations, validation.Recommendation{
			RecommendationType:   validation.RecommendationComplianceUpdate,
			Priority:             validation.RecommendationPriorityHigh,
			Title:                "Address regulatory compliance gaps",
			Description:          "One or more regulatory requirements are not satisfied",
			ExpectedBenefit:      "Avoids fines and delivery suspensions",
			ImplementationEffort: "MEDIUM",
			ImplementationSteps:  []string{"Obtain the missing regulatory documents", "Attach document numbers to the delivery"},
			EstimatedTimeframe:   "Within the compliance deadline",
		})
	}

	if len(result.BusinessRuleViolations) > 0 {
		result.Recommendations = append(result.Recommendations, validation.Recommendation{
			RecommendationType:   validation.RecommendationProcessEnhancement,
			Priority:             validation.RecommendationPriorityHigh,
			Title:                "Correct business rule violations",
			Description:          "Business rules fired during validation",
			ExpectedBenefit:      "Consistent, reconcilable delivery records",
			ImplementationEffort: "LOW",
			ImplementationSteps:  []string{"Apply the correction steps attached to each violation"},
			EstimatedTimeframe:   "Before resubmission",
		})
	}

	if len(result.DataQualityIssues) > 3 {
		result.Recommendations = append(result.Recommendations, validation.Recommendation{
			RecommendationType:   validation.RecommendationDataImprovement,
			Priority:             validation.RecommendationPriorityHigh,
			Title:                "Improve data capture completeness",
			Description:          "Several optional fields are missing or inconsistent",
			ExpectedBenefit:      "Better traceability and analytics quality",
			ImplementationEffort: "MEDIUM",
			ImplementationSteps:  []string{"Capture driver and loading measurements at the terminal", "Train terminal staff on full record capture"},
			EstimatedTimeframe:   "2-4 weeks",
		})
	}
}

func (o *Orchestrator) finalizeSummary(result *validation.Result, started time.Time, vctx Context, totalChecks, failedChecks int) {
	now := time.Now()

	result.Summary = validation.Summary{
		TotalChecksPerformed: totalChecks,
		PassedChecks:         totalChecks - failedChecks,
		FailedChecks:         failedChecks,
		WarningsGenerated:    len(result.Warnings),
		OverallStatus:        statusForScore(result.Score),
		CompletionTime:       now.Sub(started),
		ValidatedAt:          now,
		ValidatedBy:          vctx.UserID,
		NextReviewDate:       now.AddDate(0, 0, nextReviewDays(result.Score)),
	}
}

func (o *Orchestrator) systemFailureResult(started time.Time, vctx Context, detail string) *validation.Result {
	now := time.Now()
	sysErr := validation.Error{
		ErrorCode:          "VALIDATION_SYSTEM_ERROR",
		ErrorType:          validation.ErrorTypeSystem,
		ErrorMessage:       "Validation could not be completed: " + detail,
		Severity:           validation.SeverityCritical,
		CorrectionAction:   "Retry validation; contact support if the error persists",
		ImpactDescription:  "Delivery could not be validated",
		ValidationCategory: "SYSTEM",
	}
	return &validation.Result{
		IsValid:        false,
		Score:          0,
		Errors:         []validation.Error{sysErr},
		CriticalIssues: []validation.Error{sysErr},
		Summary: validation.Summary{
			TotalChecksPerformed: 1,
			FailedChecks:         1,
			OverallStatus:        validation.StatusFailed,
			CompletionTime:       now.Sub(started),
			ValidatedAt:          now,
			ValidatedBy:          vctx.UserID,
			NextReviewDate:       now.AddDate(0, 0, nextReviewDays(0)),
		},
	}
}

func (o *Orchestrator) publishValidationCompleted(ctx context.Context, d *entity.DailyDelivery, result *validation.Result) {
	if o.dispatcher == nil {
		return
	}
	o.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeValidationCompleted, d.ID, map[string]interface{}{
		"delivery_number": d.DeliveryNumber,
		"is_valid":        result.IsValid,
		"score":           result.Score,
		"status":          result.Summary.OverallStatus,
	}))
}

func statusForScore(score int) string {
	switch {
	case score >= 90:
		return validation.StatusExcellent
	case score >= 80:
		return validation.StatusGood
	case score >= 70:
		return validation.StatusAcceptable
	case score >= 50:
		return validation.StatusPoor
	default:
		return validation.StatusFailed
	}
}

func nextReviewDays(score int) int {
	switch {
	case score >= 90:
		return 30
	case score >= 70:
		return 14
	default:
		return 7
	}
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func commonIssues(counts map[string]int, n int) []string {
	if n == 0 {
		return nil
	}
	threshold := float64(n) * 0.1
	var issues []string
	for code, count := range counts {
		if float64(count) >= threshold {
			issues = append(issues, code)
		}
	}
	return issues
}

func batchRecommendations(batch *validation.BatchResult, complianceCount, qualityCount int) []string {
	n := batch.TotalValidated
	if n == 0 {
		return nil
	}

	var actions []string
	if float64(batch.InvalidCount)/float64(n) > 0.2 {
		actions = append(actions, "Review data entry processes - high failure rate detected")
	}
	if float64(complianceCount) > float64(n)*0.5 {
		actions = append(actions, "Strengthen regulatory compliance processes")
	}
	if qualityCount > n {
		actions = append(actions, "Improve data capture quality at source")
	}
	return actions
}
