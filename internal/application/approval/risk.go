package approval

import (
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
)

// Risk score thresholds for single-delivery assessments
const (
	singleRiskHighAbove   = 60
	singleRiskMediumAbove = 30

	highValueDelivery = 100000
	highValueScore    = 20
	lpgHandlingScore  = 30
	missingDocsScore  = 25
)

// Risk score thresholds for bulk assessments
const (
	bulkBaseScore       = 10
	bulkRiskHighAbove   = 50
	bulkRiskMediumAbove = 25

	bulkHighValueAmount = 500000
	bulkHighValueScore  = 30
	bulkManyCustomers   = 10
	bulkCustomerScore   = 15
)

// environmentalImpact classifies product grades by handling and spill risk
var environmentalImpact = map[string]string{
	entity.ProductPMS:        entity.RiskMedium,
	entity.ProductAGO:        entity.RiskMedium,
	entity.ProductKerosene:   entity.RiskMedium,
	entity.ProductIFO:        entity.RiskHigh,
	entity.ProductLPG:        entity.RiskHigh,
	entity.ProductLubricants: entity.RiskLow,
}

// EnvironmentalImpact returns the impact class for a product grade
func EnvironmentalImpact(productType string) string {
	if impact, ok := environmentalImpact[productType]; ok {
		return impact
	}
	return entity.RiskMedium
}

// AssessDeliveryRisk scores one delivery for approval routing. The
// assessment feeds workflow metadata and auto-approval conditions; it never
// drives state transitions directly.
func AssessDeliveryRisk(d *entity.DailyDelivery) *entity.RiskAssessment {
	assessment := &entity.RiskAssessment{RiskLevel: entity.RiskLow}

	if d.TotalValue > highValueDelivery {
		assessment.RiskScore += highValueScore
		assessment.RiskFactors = append(assessment.RiskFactors, entity.RiskFactor{
			FactorType:  entity.RiskFactorFinancial,
			FactorName:  "High delivery value",
			Severity:    entity.RiskMedium,
			Impact:      "Large financial exposure on a single delivery",
			Probability: 1,
		})
		assessment.MitigationActions = append(assessment.MitigationActions,
			"Require senior management sign-off for high value deliveries")
	}

	if d.ProductType == entity.ProductLPG {
		assessment.RiskScore += lpgHandlingScore
		assessment.RiskFactors = append(assessment.RiskFactors, entity.RiskFactor{
			FactorType:  entity.RiskFactorOperational,
			FactorName:  "LPG handling",
			Severity:    entity.RiskHigh,
			Impact:      "Pressurised product requires certified handling",
			Probability: 1,
		})
		assessment.MitigationActions = append(assessment.MitigationActions,
			"Verify LPG handling certification of the transporter")
	}

	if d.NPAPermitNumber == "" || d.CustomsEntryNumber == "" {
		assessment.RiskScore += missingDocsScore
		assessment.RiskFactors = append(assessment.RiskFactors, entity.RiskFactor{
			FactorType:  entity.RiskFactorCompliance,
			FactorName:  "Missing regulatory documents",
			Severity:    entity.RiskHigh,
			Impact:      "Delivery may be suspended by regulators",
			Probability: 0.7,
		})
		assessment.MitigationActions = append(assessment.MitigationActions,
			"Obtain the missing regulatory documents before delivery")
	}

	assessment.RiskLevel = riskLevel(assessment.RiskScore, singleRiskHighAbove, singleRiskMediumAbove)
	assessment.MitigationActions = dedupe(assessment.MitigationActions)
	return assessment
}

// AssessBulkRisk scores a bulk invoice generation request
func AssessBulkRisk(deliveries []*entity.DailyDelivery) *entity.RiskAssessment {
	assessment := &entity.RiskAssessment{RiskScore: bulkBaseScore}

	totalAmount := 0.0
	customers := make(map[string]bool)
	for _, d := range deliveries {
		totalAmount += d.TotalValue
		customers[d.CustomerID] = true
	}

	if totalAmount > bulkHighValueAmount {
		assessment.RiskScore += bulkHighValueScore
		assessment.RiskFactors = append(assessment.RiskFactors, entity.RiskFactor{
			FactorType:  entity.RiskFactorFinancial,
			FactorName:  "High aggregate invoice value",
			Severity:    entity.RiskHigh,
			Impact:      "Large receivable exposure in one batch",
			Probability: 1,
		})
		assessment.MitigationActions = append(assessment.MitigationActions,
			"Review aggregate credit exposure before invoicing")
	}

	if len(customers) > bulkManyCustomers {
		assessment.RiskScore += bulkCustomerScore
		assessment.RiskFactors = append(assessment.RiskFactors, entity.RiskFactor{
			FactorType:  entity.RiskFactorOperational,
			FactorName:  "Many customers in one batch",
			Severity:    entity.RiskMedium,
			Impact:      "Errors in a large batch affect many accounts",
			Probability: 0.5,
		})
		assessment.MitigationActions = append(assessment.MitigationActions,
			"Sample-check invoices across customers before release")
	}

	assessment.RiskLevel = riskLevel(assessment.RiskScore, bulkRiskHighAbove, bulkRiskMediumAbove)
	assessment.MitigationActions = dedupe(assessment.MitigationActions)
	return assessment
}

func riskLevel(score, highAbove, mediumAbove int) string {
	switch {
	case score > highAbove:
		return entity.RiskHigh
	case score > mediumAbove:
		return entity.RiskMedium
	default:
		return entity.RiskLow
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
