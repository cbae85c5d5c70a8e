package approval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omcsuite/daily-delivery/internal/domain/entity"
)

func documentedDelivery() *entity.DailyDelivery {
	return &entity.DailyDelivery{
		ID:                 "del-001",
		CustomerID:         "cust-001",
		ProductType:        entity.ProductPMS,
		TotalValue:         50000,
		NPAPermitNumber:    "NPA-2026-00123",
		CustomsEntryNumber: "CUS-2026-00456",
	}
}

func TestAssessDeliveryRiskLow(t *testing.T) {
	assessment := AssessDeliveryRisk(documentedDelivery())

	assert.Equal(t, 0, assessment.RiskScore)
	assert.Equal(t, entity.RiskLow, assessment.RiskLevel)
	assert.Empty(t, assessment.RiskFactors)
}

func TestAssessDeliveryRiskFactors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*entity.DailyDelivery)
		wantScore int
		wantLevel string
	}{
		{
			name:      "high value",
			mutate:    func(d *entity.DailyDelivery) { d.TotalValue = 150000 },
			wantScore: 20,
			wantLevel: entity.RiskLow,
		},
		{
			name:      "lpg handling",
			mutate:    func(d *entity.DailyDelivery) { d.ProductType = entity.ProductLPG },
			wantScore: 30,
			wantLevel: entity.RiskLow,
		},
		{
			name:      "missing documents",
			mutate:    func(d *entity.DailyDelivery) { d.NPAPermitNumber = "" },
			wantScore: 25,
			wantLevel: entity.RiskLow,
		},
		{
			name: "lpg with missing documents",
			mutate: func(d *entity.DailyDelivery) {
				d.ProductType = entity.ProductLPG
				d.CustomsEntryNumber = ""
			},
			wantScore: 55,
			wantLevel: entity.RiskMedium,
		},
		{
			name: "all factors",
			mutate: func(d *entity.DailyDelivery) {
				d.TotalValue = 150000
				d.ProductType = entity.ProductLPG
				d.NPAPermitNumber = ""
			},
			wantScore: 75,
			wantLevel: entity.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := documentedDelivery()
			tt.mutate(d)

			assessment := AssessDeliveryRisk(d)
			assert.Equal(t, tt.wantScore, assessment.RiskScore)
			assert.Equal(t, tt.wantLevel, assessment.RiskLevel)
			assert.NotEmpty(t, assessment.MitigationActions)
		})
	}
}

func TestAssessBulkRisk(t *testing.T) {
	makeBatch := func(n int, valueEach float64, distinctCustomers bool) []*entity.DailyDelivery {
		batch := make([]*entity.DailyDelivery, n)
		for i := range batch {
			customer := "cust-001"
			if distinctCustomers {
				customer = fmt.Sprintf("cust-%03d", i)
			}
			batch[i] = &entity.DailyDelivery{
				ID:         fmt.Sprintf("del-%03d", i),
				CustomerID: customer,
				TotalValue: valueEach,
			}
		}
		return batch
	}

	t.Run("small batch stays low", func(t *testing.T) {
		assessment := AssessBulkRisk(makeBatch(5, 10000, false))
		assert.Equal(t, bulkBaseScore, assessment.RiskScore)
		assert.Equal(t, entity.RiskLow, assessment.RiskLevel)
	})

	t.Run("high aggregate value", func(t *testing.T) {
		assessment := AssessBulkRisk(makeBatch(6, 100000, false))
		assert.Equal(t, bulkBaseScore+bulkHighValueScore, assessment.RiskScore)
		assert.Equal(t, entity.RiskMedium, assessment.RiskLevel)
	})

	t.Run("many customers and high value", func(t *testing.T) {
		assessment := AssessBulkRisk(makeBatch(12, 50000, true))
		assert.Equal(t, bulkBaseScore+bulkHighValueScore+bulkCustomerScore, assessment.RiskScore)
		assert.Equal(t, entity.RiskHigh, assessment.RiskLevel)
	})
}

func TestEnvironmentalImpact(t *testing.T) {
	tests := []struct {
		productType string
		want        string
	}{
		{entity.ProductPMS, entity.RiskMedium},
		{entity.ProductAGO, entity.RiskMedium},
		{entity.ProductKerosene, entity.RiskMedium},
		{entity.ProductIFO, entity.RiskHigh},
		{entity.ProductLPG, entity.RiskHigh},
		{entity.ProductLubricants, entity.RiskLow},
		{"BITUMEN", entity.RiskMedium},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EnvironmentalImpact(tt.productType), tt.productType)
	}
}
