package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/BarNest/internal/model"
)

// StockSelector chooses which stock length the next cutting pattern should
// target, given the still-unplaced parts of one profile.
type StockSelector struct {
	lengths     []float64 // ascending
	kerfMM      float64
	toleranceMM float64
}

// NewStockSelector creates a selector over the configured stock lengths.
func NewStockSelector(settings model.NestSettings) *StockSelector {
	lengths := append([]float64(nil), settings.StockLengths...)
	sort.Float64s(lengths)
	return &StockSelector{
		lengths:     lengths,
		kerfMM:      settings.KerfMM,
		toleranceMM: settings.ToleranceMM,
	}
}

// Longest returns the longest available stock length, or 0 when none are
// configured.
func (s *StockSelector) Longest() float64 {
	if len(s.lengths) == 0 {
		return 0
	}
	return s.lengths[len(s.lengths)-1]
}

// FilterOversized splits parts into those that fit at least the longest stock
// and rejection records for those that exceed every available bar.
func (s *StockSelector) FilterOversized(parts []model.Part) (fit []model.Part, rejected []model.RejectedPart) {
	longest := s.Longest()
	for _, p := range parts {
		if p.LengthMM > longest+s.toleranceMM {
			rejected = append(rejected, model.RejectedPart{
				PartID:      p.ID,
				Reference:   p.Reference,
				ProfileName: p.ProfileName,
				LengthMM:    p.LengthMM,
				StockLength: longest,
				Reason: fmt.Sprintf("part length (%.1fmm) exceeds longest available stock (%.0fmm)",
					p.LengthMM, longest),
			})
			continue
		}
		fit = append(fit, p)
	}
	return fit, rejected
}

// Select picks the stock length for the next pattern.
//
// A stock is a candidate when every remaining part fits it individually and
// the summed part length plus a worst-case kerf estimate ((n-1) x kerf) fits
// too. Among candidates the smallest wins: it holds everyone without
// over-provisioning. When no stock holds all remaining parts together, the
// largest stock that holds the single largest part is used instead, batching
// as much as possible into fewer, longer bars.
func (s *StockSelector) Select(parts []model.Part) (float64, bool) {
	if len(parts) == 0 || len(s.lengths) == 0 {
		return 0, false
	}

	var total, largest float64
	for _, p := range parts {
		total += p.LengthMM
		if p.LengthMM > largest {
			largest = p.LengthMM
		}
	}
	estimatedKerf := float64(len(parts)-1) * s.kerfMM
	totalWithKerf := total + estimatedKerf

	// Smallest stock that accommodates everyone.
	for _, stock := range s.lengths {
		if largest <= stock+s.toleranceMM && totalWithKerf <= stock+s.toleranceMM {
			return stock, true
		}
	}

	// Fallback: largest stock that holds the largest part.
	for i := len(s.lengths) - 1; i >= 0; i-- {
		if largest <= s.lengths[i]+s.toleranceMM {
			return s.lengths[i], true
		}
	}

	// Unreachable after FilterOversized; signals an internal invariant breach.
	return 0, false
}
