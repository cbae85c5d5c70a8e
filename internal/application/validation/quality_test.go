package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

func floatP(v float64) *float64 { return &v }

func timeP(v time.Time) *time.Time { return &v }

// fullyCapturedDelivery has every optional quality field populated and all
// values inside the typical ranges, so it produces zero quality issues.
func fullyCapturedDelivery() *entity.DailyDelivery {
	start := time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	return &entity.DailyDelivery{
		DeliveryNumber:            "DD-20260815-A1B2C3",
		ProductType:               entity.ProductPMS,
		QuantityLitres:            5000,
		VehicleRegistrationNumber: "GR 1234-23",
		DriverName:                "Kwame Mensah",
		DriverLicenseNumber:       "DL-4459921",
		TemperatureAtLoading:      floatP(28.5),
		DensityAtLoading:          floatP(0.745),
		LoadingStartTime:          timeP(start),
		LoadingEndTime:            timeP(end),
	}
}

func qualityIssueFor(issues []validation.DataQualityIssue, field string) *validation.DataQualityIssue {
	for i := range issues {
		if issues[i].FieldName == field {
			return &issues[i]
		}
	}
	return nil
}

func TestQualityFullyCapturedDelivery(t *testing.T) {
	q := NewQualityAssessor()
	assert.Empty(t, q.Assess(fullyCapturedDelivery()))
}

func TestQualityMissingOptionalFields(t *testing.T) {
	q := NewQualityAssessor()
	d := fullyCapturedDelivery()
	d.DriverName = ""
	d.TemperatureAtLoading = nil

	issues := q.Assess(d)
	require.Len(t, issues, 2)

	for _, field := range []string{"driverName", "temperatureAtLoading"} {
		issue := qualityIssueFor(issues, field)
		require.NotNil(t, issue, field)
		assert.Equal(t, validation.QualityIssueMissingData, issue.IssueType)
		assert.Equal(t, 70, issue.DataQualityScore)
		assert.False(t, issue.AutoCorrectPossible)
	}
}

func TestQualityLoadingTimeOrder(t *testing.T) {
	q := NewQualityAssessor()
	d := fullyCapturedDelivery()
	d.LoadingEndTime = timeP(d.LoadingStartTime.Add(-10 * time.Minute))

	issues := q.Assess(d)
	issue := qualityIssueFor(issues, "loadingEndTime")
	require.NotNil(t, issue)
	assert.Equal(t, validation.QualityIssueInconsistentData, issue.IssueType)
	assert.Equal(t, 30, issue.DataQualityScore)
}

func TestQualityEqualLoadingTimesFlagged(t *testing.T) {
	q := NewQualityAssessor()
	d := fullyCapturedDelivery()
	d.LoadingEndTime = timeP(*d.LoadingStartTime)

	issues := q.Assess(d)
	assert.NotNil(t, qualityIssueFor(issues, "loadingEndTime"))
}

func TestQualityBadVehicleRegistration(t *testing.T) {
	q := NewQualityAssessor()
	d := fullyCapturedDelivery()
	d.VehicleRegistrationNumber = "TRUCK-01"

	issues := q.Assess(d)
	issue := qualityIssueFor(issues, "vehicleRegistrationNumber")
	require.NotNil(t, issue)
	assert.Equal(t, validation.QualityIssueInvalidFormat, issue.IssueType)
	assert.Equal(t, 65, issue.DataQualityScore)
}

func TestQualityQuantityOutliers(t *testing.T) {
	tests := []struct {
		name        string
		productType string
		quantity    float64
		outlier     bool
	}{
		{"pms in band", entity.ProductPMS, 5000, false},
		{"pms below band", entity.ProductPMS, 500, true},
		{"pms above band", entity.ProductPMS, 45000, true},
		{"lpg in band", entity.ProductLPG, 800, false},
		{"lpg below band", entity.ProductLPG, 200, true},
		{"ifo lower bound", entity.ProductIFO, 5000, false},
		{"lubricants above band", entity.ProductLubricants, 12000, true},
	}

	q := NewQualityAssessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := fullyCapturedDelivery()
			d.ProductType = tt.productType
			d.QuantityLitres = tt.quantity

			issue := qualityIssueFor(q.Assess(d), "quantityLitres")
			if tt.outlier {
				require.NotNil(t, issue)
				assert.Equal(t, validation.QualityIssueOutlierValue, issue.IssueType)
				assert.Equal(t, 60, issue.DataQualityScore)
			} else {
				assert.Nil(t, issue)
			}
		})
	}
}

func TestQualityUnknownProductSkipsBandCheck(t *testing.T) {
	q := NewQualityAssessor()
	d := fullyCapturedDelivery()
	d.ProductType = "BITUMEN"
	d.QuantityLitres = 999999

	assert.Nil(t, qualityIssueFor(q.Assess(d), "quantityLitres"))
}
