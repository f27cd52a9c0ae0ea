package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePurchaseEstimate(t *testing.T) {
	parts := []Part{
		NewPart("B-1", "IPE300", 5000),
		NewPart("B-2", "IPE300", 5000),
		NewPart("B-3", "IPE300", 4000),
	}

	est := CalculatePurchaseEstimate(parts, 12000, 3, 10, 250)

	// 14000mm of parts plus 3 kerfs = 14009mm.
	assert.InDelta(t, 14009.0, est.TotalPartLength, 0.01)
	assert.InDelta(t, 14009.0/12000.0, est.BarsNeededExact, 1e-9)
	assert.Equal(t, 2, est.BarsNeededMin)
	assert.Equal(t, 2, est.BarsWithWaste)
	assert.InDelta(t, 500.0, est.EstimatedCost, 0.01)
}

func TestCalculatePurchaseEstimate_WasteFactorAddsBar(t *testing.T) {
	parts := []Part{
		NewPart("B-1", "IPE300", 5997),
		NewPart("B-2", "IPE300", 5997),
	}

	// Exactly two full 6m bars; a 10% waste factor forces a third.
	est := CalculatePurchaseEstimate(parts, 6000, 3, 10, 0)
	assert.Equal(t, 2, est.BarsNeededMin)
	assert.Equal(t, 3, est.BarsWithWaste)
	assert.Equal(t, 0.0, est.EstimatedCost)
}

func TestCalculatePurchaseEstimate_ZeroStockLength(t *testing.T) {
	parts := []Part{NewPart("B-1", "IPE300", 5000)}

	est := CalculatePurchaseEstimate(parts, 0, 3, 10, 250)
	assert.InDelta(t, 5003.0, est.TotalPartLength, 0.01)
	assert.Equal(t, 0, est.BarsNeededMin)
	assert.Equal(t, 0, est.BarsWithWaste)
	assert.Equal(t, 0.0, est.EstimatedCost)
}
