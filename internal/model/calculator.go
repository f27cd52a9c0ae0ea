package model

import "math"

// PurchaseEstimate holds the results of a stock bar purchasing calculation.
type PurchaseEstimate struct {
	TotalPartLength float64 `json:"total_part_length"` // Total length of all parts (mm)
	StockLength     float64 `json:"stock_length"`      // Length of one stock bar (mm)
	BarsNeededExact float64 `json:"bars_needed_exact"` // Exact fractional number of bars
	BarsNeededMin   int     `json:"bars_needed_min"`   // Minimum bars (ceiling of exact)
	BarsWithWaste   int     `json:"bars_with_waste"`   // Recommended bars including waste factor
	WastePercent    float64 `json:"waste_percent"`     // Waste factor applied (e.g. 10 for 10%)
	EstimatedCost   float64 `json:"estimated_cost"`    // Total cost if pricing available
	PricePerBar     float64 `json:"price_per_bar"`     // Price used for estimation
	KerfMM          float64 `json:"kerf_mm"`           // Kerf width used in calculation
}

// CalculatePurchaseEstimate computes how many stock bars to buy for a cut
// list before nesting. Each part is charged one kerf width; an additional
// waste percentage covers unusable tails and pairing that fails to share cuts.
func CalculatePurchaseEstimate(parts []Part, stockLength, kerfMM, wastePercent, pricePerBar float64) PurchaseEstimate {
	var totalPartLength float64
	for _, p := range parts {
		totalPartLength += p.LengthMM + kerfMM
	}

	if stockLength <= 0 {
		return PurchaseEstimate{
			TotalPartLength: totalPartLength,
			WastePercent:    wastePercent,
			KerfMM:          kerfMM,
		}
	}

	exactBars := totalPartLength / stockLength
	minBars := int(math.Ceil(exactBars))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	barsWithWaste := int(math.Ceil(exactBars * wasteFactor))
	if barsWithWaste < minBars {
		barsWithWaste = minBars
	}

	return PurchaseEstimate{
		TotalPartLength: totalPartLength,
		StockLength:     stockLength,
		BarsNeededExact: exactBars,
		BarsNeededMin:   minBars,
		BarsWithWaste:   barsWithWaste,
		WastePercent:    wastePercent,
		EstimatedCost:   float64(barsWithWaste) * pricePerBar,
		PricePerBar:     pricePerBar,
		KerfMM:          kerfMM,
	}
}
