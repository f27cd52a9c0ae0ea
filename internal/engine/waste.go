package engine

import (
	"strconv"

	"github.com/piwi3910/BarNest/internal/model"
)

// RejectionTracker accumulates parts that could not be nested, each with a
// human-readable reason and the stock-length context of the decision.
type RejectionTracker struct {
	rejected []model.RejectedPart
}

// Reject records a single part rejection.
func (t *RejectionTracker) Reject(p model.Part, stockLength float64, reason string) {
	t.rejected = append(t.rejected, model.RejectedPart{
		PartID:      p.ID,
		Reference:   p.Reference,
		ProfileName: p.ProfileName,
		LengthMM:    p.LengthMM,
		StockLength: stockLength,
		Reason:      reason,
	})
}

// Add appends pre-built rejection records.
func (t *RejectionTracker) Add(records ...model.RejectedPart) {
	t.rejected = append(t.rejected, records...)
}

// Rejected returns the accumulated records, never nil.
func (t *RejectionTracker) Rejected() []model.RejectedPart {
	if t.rejected == nil {
		return []model.RejectedPart{}
	}
	return t.rejected
}

// stockKey renders a stock length as the report's map key, e.g. "6000" or
// "6100.5".
func stockKey(stockLength float64) string {
	return strconv.FormatFloat(stockLength, 'f', -1, 64)
}

// AccountProfile fills the waste and usage aggregates of a profile result
// from its patterns. TotalWastePercentage is weighted by stock length used.
func AccountProfile(pr *model.ProfileNestingResult) {
	usage := make(map[string]int)
	var totalWaste, totalStock float64
	for _, pattern := range pr.Patterns {
		usage[stockKey(pattern.StockLength)]++
		totalWaste += pattern.WasteMM
		totalStock += pattern.StockLength
	}
	pr.StockUsage = usage
	pr.TotalWaste = totalWaste
	if totalStock > 0 {
		pr.TotalWastePercentage = totalWaste / totalStock * 100.0
	} else {
		pr.TotalWastePercentage = 0
	}
}

// Summarize aggregates profile results into the report summary. The average
// waste percentage is area-weighted: total waste over total stock length
// used, not a mean of per-pattern percentages.
func Summarize(profiles []model.ProfileNestingResult) model.ReportSummary {
	summary := model.ReportSummary{TotalProfiles: len(profiles)}
	var totalStock float64
	for _, pr := range profiles {
		summary.TotalParts += pr.TotalParts
		summary.TotalWaste += pr.TotalWaste
		for _, pattern := range pr.Patterns {
			summary.TotalStockBars++
			totalStock += pattern.StockLength
		}
	}
	if totalStock > 0 {
		summary.AverageWastePercentage = summary.TotalWaste / totalStock * 100.0
	}
	return summary
}
