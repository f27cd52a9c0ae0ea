package model

import (
	"sort"

	"github.com/google/uuid"
)

// Offcut represents a usable bar remnant left at the tail of a cutting
// pattern. Tails shorter than the configured minimum are plain waste.
type Offcut struct {
	ID          string  `json:"id"`
	ProfileName string  `json:"profile_name"`
	StockLength float64 `json:"stock_length"` // Length of the source bar (mm)
	BarIndex    int     `json:"bar_index"`    // Index of the source pattern within its profile
	LengthMM    float64 `json:"length_mm"`    // Usable remnant length (mm)
}

// DetectOffcuts scans a profile's patterns for waste tails long enough to be
// returned to inventory. minLengthMM below or equal zero disables detection.
func DetectOffcuts(pr ProfileNestingResult, minLengthMM float64) []Offcut {
	if minLengthMM <= 0 {
		return nil
	}

	var offcuts []Offcut
	for i, pattern := range pr.Patterns {
		if pattern.WasteMM >= minLengthMM {
			offcuts = append(offcuts, Offcut{
				ID:          uuid.New().String()[:8],
				ProfileName: pr.ProfileName,
				StockLength: pattern.StockLength,
				BarIndex:    i,
				LengthMM:    pattern.WasteMM,
			})
		}
	}

	sort.Slice(offcuts, func(i, j int) bool {
		return offcuts[i].LengthMM > offcuts[j].LengthMM
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across every profile in a report.
func DetectAllOffcuts(report NestingReport, minLengthMM float64) []Offcut {
	var all []Offcut
	for _, pr := range report.Profiles {
		all = append(all, DetectOffcuts(pr, minLengthMM)...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LengthMM > all[j].LengthMM
	})
	return all
}

// TotalOffcutLength returns the summed length of all offcuts in mm.
func TotalOffcutLength(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.LengthMM
	}
	return total
}
