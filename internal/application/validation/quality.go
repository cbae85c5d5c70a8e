package validation

import (
	"fmt"

	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/validation"
	"github.com/omcsuite/daily-delivery/pkg/utils"
)

// quantityBands holds the typical delivery quantity range per product grade.
// Quantities outside the band are flagged as outliers, not rejected.
var quantityBands = map[string][2]float64{
	entity.ProductPMS:        {1000, 40000},
	entity.ProductAGO:        {1000, 40000},
	entity.ProductIFO:        {5000, 50000},
	entity.ProductLPG:        {500, 20000},
	entity.ProductKerosene:   {1000, 30000},
	entity.ProductLubricants: {200, 10000},
}

// optionalQualityFields are not required for validity but their absence
// lowers the data-quality score.
var optionalQualityFields = []struct {
	name  string
	label string
}{
	{"driverName", "driver name"},
	{"driverLicenseNumber", "driver license number"},
	{"temperatureAtLoading", "loading temperature"},
	{"densityAtLoading", "loading density"},
}

// QualityAssessor applies the data-quality heuristics. Findings are always
// informational; they weight the score but never block validation.
type QualityAssessor struct{}

func NewQualityAssessor() *QualityAssessor {
	return &QualityAssessor{}
}

// Assess returns the data-quality issues found on the delivery
func (q *QualityAssessor) Assess(d *entity.DailyDelivery) []validation.DataQualityIssue {
	var issues []validation.DataQualityIssue
	record := d.AsRecord()

	for _, field := range optionalQualityFields {
		if _, present := record[field.name]; present {
			continue
		}
		issues = append(issues, validation.DataQualityIssue{
			IssueType:            validation.QualityIssueMissingData,
			FieldName:            field.name,
			IssueDescription:     fmt.Sprintf("Optional field %s was not captured", field.label),
			DataQualityScore:     70,
			ImpactOnProcessing:   "Reduces traceability of the delivery record",
			SuggestedImprovement: fmt.Sprintf("Capture %s at the loading terminal", field.label),
			AutoCorrectPossible:  false,
		})
	}

	if d.LoadingStartTime != nil && d.LoadingEndTime != nil &&
		!d.LoadingEndTime.After(*d.LoadingStartTime) {
		issues = append(issues, validation.DataQualityIssue{
			IssueType:            validation.QualityIssueInconsistentData,
			FieldName:            "loadingEndTime",
			IssueDescription:     "Loading end time is not after loading start time",
			DataQualityScore:     30,
			ImpactOnProcessing:   "Loading duration cannot be derived from the record",
			SuggestedImprovement: "Correct the loading timestamps from terminal logs",
			AutoCorrectPossible:  false,
		})
	}

	if d.VehicleRegistrationNumber != "" {
		if err := utils.ValidateVehicleRegistration(d.VehicleRegistrationNumber); err != nil {
			issues = append(issues, validation.DataQualityIssue{
				IssueType:            validation.QualityIssueInvalidFormat,
				FieldName:            "vehicleRegistrationNumber",
				IssueDescription:     fmt.Sprintf("Vehicle registration %q does not match the DVLA plate format", d.VehicleRegistrationNumber),
				DataQualityScore:     65,
				ImpactOnProcessing:   "Delivery cannot be reconciled against the fleet register",
				SuggestedImprovement: "Re-enter the registration as printed on the vehicle plate",
				AutoCorrectPossible:  false,
			})
		}
	}

	if band, ok := quantityBands[d.ProductType]; ok {
		if d.QuantityLitres < band[0] || d.QuantityLitres > band[1] {
			issues = append(issues, validation.DataQualityIssue{
				IssueType:            validation.QualityIssueOutlierValue,
				FieldName:            "quantityLitres",
				IssueDescription:     fmt.Sprintf("Quantity %.2f litres is outside the typical %s range of %.0f-%.0f", d.QuantityLitres, d.ProductType, band[0], band[1]),
				DataQualityScore:     60,
				ImpactOnProcessing:   "Unusual quantities distort consumption analytics",
				SuggestedImprovement: "Confirm the metered quantity against the waybill",
				AutoCorrectPossible:  false,
			})
		}
	}

	return issues
}
