// Package validation defines the data model of the delivery validation
// engine: rule definitions, the typed findings a validation run produces,
// and the aggregate result returned to callers.
package validation

import "time"

// Error severity levels, ordered from least to most severe
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Error type discriminants
const (
	ErrorTypeRequiredField = "REQUIRED_FIELD"
	ErrorTypeInvalidFormat = "INVALID_FORMAT"
	ErrorTypeBusinessRule  = "BUSINESS_RULE"
	ErrorTypeDataIntegrity = "DATA_INTEGRITY"
	ErrorTypeCompliance    = "COMPLIANCE"
	ErrorTypeSystem        = "SYSTEM_ERROR"
)

// Warning type discriminants
const (
	WarningTypeDataQuality   = "DATA_QUALITY"
	WarningTypeBusinessLogic = "BUSINESS_LOGIC"
	WarningTypeCompliance    = "COMPLIANCE"
	WarningTypePerformance   = "PERFORMANCE"
	WarningTypeSecurity      = "SECURITY"
)

// Compliance domains
const (
	ComplianceNPA           = "GHANA_NPA"
	ComplianceCustoms       = "GHANA_CUSTOMS"
	ComplianceTax           = "TAX_COMPLIANCE"
	ComplianceEnvironmental = "ENVIRONMENTAL"
	ComplianceQuality       = "QUALITY_STANDARD"
	ComplianceUPPF          = "UPPF"
	ComplianceIFRS          = "IFRS"
)

// Compliance issue severities
const (
	ComplianceSeverityMinor    = "MINOR"
	ComplianceSeverityModerate = "MODERATE"
	ComplianceSeverityMajor    = "MAJOR"
	ComplianceSeverityCritical = "CRITICAL"
)

// Data quality issue types
const (
	QualityIssueMissingData      = "MISSING_DATA"
	QualityIssueInconsistentData = "INCONSISTENT_DATA"
	QualityIssueInvalidFormat    = "INVALID_FORMAT"
	QualityIssueDuplicateData    = "DUPLICATE_DATA"
	QualityIssueOutlierValue     = "OUTLIER_VALUE"
	QualityIssueStaleData        = "STALE_DATA"
)

// Business rule violation kinds. The evaluator currently only emits
// MANDATORY; OPTIONAL and CONDITIONAL are reserved for rule configurations
// that do not exist yet.
const (
	ViolationMandatory   = "MANDATORY"
	ViolationOptional    = "OPTIONAL"
	ViolationConditional = "CONDITIONAL"
)

// Recommendation kinds and priorities
const (
	RecommendationDataImprovement    = "DATA_IMPROVEMENT"
	RecommendationProcessEnhancement = "PROCESS_ENHANCEMENT"
	RecommendationComplianceUpdate   = "COMPLIANCE_UPDATE"
	RecommendationSystemOptimization = "SYSTEM_OPTIMIZATION"
	RecommendationTraining           = "TRAINING"

	RecommendationPriorityLow    = "LOW"
	RecommendationPriorityMedium = "MEDIUM"
	RecommendationPriorityHigh   = "HIGH"
	RecommendationPriorityUrgent = "URGENT"
)

// Overall validation status tiers
const (
	StatusExcellent  = "EXCELLENT"
	StatusGood       = "GOOD"
	StatusAcceptable = "ACCEPTABLE"
	StatusPoor       = "POOR"
	StatusFailed     = "FAILED"
)

// Error is a single field, business-rule, compliance or system finding.
// Findings are write-once: produced during one validation pass and never
// mutated afterwards.
type Error struct {
	ErrorCode          string      `json:"error_code"`
	ErrorType          string      `json:"error_type"`
	FieldName          string      `json:"field_name,omitempty"`
	ErrorMessage       string      `json:"error_message"`
	Severity           string      `json:"severity"`
	CurrentValue       interface{} `json:"current_value,omitempty"`
	ExpectedValue      interface{} `json:"expected_value,omitempty"`
	CorrectionAction   string      `json:"correction_action"`
	ImpactDescription  string      `json:"impact_description"`
	ValidationCategory string      `json:"validation_category"`
}

// Warning is an advisory finding that never blocks validation
type Warning struct {
	WarningCode       string      `json:"warning_code"`
	WarningType       string      `json:"warning_type"`
	FieldName         string      `json:"field_name,omitempty"`
	WarningMessage    string      `json:"warning_message"`
	CurrentValue      interface{} `json:"current_value,omitempty"`
	RecommendedValue  interface{} `json:"recommended_value,omitempty"`
	RecommendedAction string      `json:"recommended_action"`
	PotentialImpact   string      `json:"potential_impact"`
}

// BusinessRuleViolation records a fired business rule
type BusinessRuleViolation struct {
	RuleCode          string   `json:"rule_code"`
	RuleName          string   `json:"rule_name"`
	RuleDescription   string   `json:"rule_description"`
	ViolationType     string   `json:"violation_type"`
	AffectedFields    []string `json:"affected_fields"`
	ViolationDetails  string   `json:"violation_details"`
	BusinessImpact    string   `json:"business_impact"`
	CorrectionSteps   []string `json:"correction_steps"`
	ExemptionPossible bool     `json:"exemption_possible"`
}

// DataQualityIssue is an informational, score-weighted finding
type DataQualityIssue struct {
	IssueType            string `json:"issue_type"`
	FieldName            string `json:"field_name"`
	IssueDescription     string `json:"issue_description"`
	DataQualityScore     int    `json:"data_quality_score"`
	ImpactOnProcessing   string `json:"impact_on_processing"`
	SuggestedImprovement string `json:"suggested_improvement"`
	AutoCorrectPossible  bool   `json:"auto_correct_possible"`
	AutoCorrectAction    string `json:"auto_correct_action,omitempty"`
}

// ComplianceIssue is a regulatory finding. Issues never block validation on
// their own; they feed the score deduction.
type ComplianceIssue struct {
	ComplianceType        string     `json:"compliance_type"`
	IssueCode             string     `json:"issue_code"`
	IssueDescription      string     `json:"issue_description"`
	ComplianceRequirement string     `json:"compliance_requirement"`
	ViolationSeverity     string     `json:"violation_severity"`
	RegulatoryRisk        string     `json:"regulatory_risk"`
	RemedialActions       []string   `json:"remedial_actions"`
	ComplianceDeadline    *time.Time `json:"compliance_deadline,omitempty"`
	PenaltyRisk           string     `json:"penalty_risk,omitempty"`
}

// Recommendation is advisory text generated from the findings; it never
// affects the score.
type Recommendation struct {
	RecommendationType   string   `json:"recommendation_type"`
	Priority             string   `json:"priority"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	ExpectedBenefit      string   `json:"expected_benefit"`
	ImplementationEffort string   `json:"implementation_effort"`
	ImplementationSteps  []string `json:"implementation_steps"`
	EstimatedTimeframe   string   `json:"estimated_timeframe"`
}

// Summary carries the check counters and derived status of one run
type Summary struct {
	TotalChecksPerformed int           `json:"total_checks_performed"`
	PassedChecks         int           `json:"passed_checks"`
	FailedChecks         int           `json:"failed_checks"`
	WarningsGenerated    int           `json:"warnings_generated"`
	OverallStatus        string        `json:"overall_validation_status"`
	CompletionTime       time.Duration `json:"validation_completion_time"`
	ValidatedAt          time.Time     `json:"validation_date_time"`
	ValidatedBy          string        `json:"validated_by"`
	NextReviewDate       time.Time     `json:"next_validation_recommended"`
}

// Result is the aggregate produced by a single validation run. It is owned
// exclusively by the caller that requested validation.
type Result struct {
	IsValid                bool                    `json:"is_valid"`
	Score                  int                     `json:"validation_score"`
	Errors                 []Error                 `json:"errors"`
	Warnings               []Warning               `json:"warnings"`
	CriticalIssues         []Error                 `json:"critical_issues"`
	BusinessRuleViolations []BusinessRuleViolation `json:"business_rule_violations"`
	DataQualityIssues      []DataQualityIssue      `json:"data_quality_issues"`
	ComplianceIssues       []ComplianceIssue       `json:"compliance_issues"`
	Recommendations        []Recommendation        `json:"recommendations"`
	Summary                Summary                 `json:"validation_summary"`
}

// FieldResult is returned by single-field validation
type FieldResult struct {
	IsValid        bool        `json:"is_valid"`
	Errors         []Error     `json:"errors"`
	Warnings       []Warning   `json:"warnings"`
	SuggestedValue interface{} `json:"suggested_value,omitempty"`
	AutoCorrection interface{} `json:"auto_correction,omitempty"`
}

// BatchSummary aggregates a batch validation run
type BatchSummary struct {
	BatchID             string        `json:"batch_id"`
	StartedAt           time.Time     `json:"validation_start_time"`
	FinishedAt          time.Time     `json:"validation_end_time"`
	TotalProcessingTime time.Duration `json:"total_processing_time"`
	DeliveriesProcessed int           `json:"deliveries_processed"`
	ValidDeliveries     int           `json:"valid_deliveries"`
	InvalidDeliveries   int           `json:"invalid_deliveries"`
	AverageScore        int           `json:"average_score"`
	CommonIssues        []string      `json:"common_issues"`
	RecommendedActions  []string      `json:"recommended_actions"`
}

// BatchResult is the full outcome of a batch validation run
type BatchResult struct {
	OverallValid   bool            `json:"overall_valid"`
	TotalValidated int             `json:"total_validated"`
	ValidCount     int             `json:"valid_count"`
	InvalidCount   int             `json:"invalid_count"`
	AverageScore   int             `json:"average_validation_score"`
	Results        []DeliveryEntry `json:"results"`
	BatchSummary   BatchSummary    `json:"batch_summary"`
}

// DeliveryEntry pairs a delivery id with its validation result
type DeliveryEntry struct {
	DeliveryID string  `json:"delivery_id"`
	Result     *Result `json:"result"`
}
