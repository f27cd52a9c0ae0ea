package model

import "github.com/google/uuid"

// CutEnd describes one end cut of a bar part as reported by the upstream
// geometry analysis. AngleDeg may follow either of two conventions (0° or 90°
// meaning a straight cut); see engine.Classify for the detection rule.
type CutEnd struct {
	AngleDeg   float64 `json:"angle_deg"`
	Confidence float64 `json:"confidence"` // 0..1, trust in the measured angle
}

// Part represents a single steel bar member to be cut from stock.
type Part struct {
	ID          string  `json:"id"`
	Reference   string  `json:"reference,omitempty"` // Drawing reference / assembly mark
	ProfileName string  `json:"profile_name"`        // e.g. "IPE400", "HEA220", "RHS100x50x4"
	LengthMM    float64 `json:"length_mm"`
	StartCut    *CutEnd `json:"start_cut,omitempty"` // nil = straight cut
	EndCut      *CutEnd `json:"end_cut,omitempty"`   // nil = straight cut
}

// NewPart creates a Part with a generated ID.
func NewPart(reference, profile string, lengthMM float64) Part {
	return Part{
		ID:          uuid.New().String()[:8],
		Reference:   reference,
		ProfileName: profile,
		LengthMM:    lengthMM,
	}
}

// NestSettings holds the engine configuration.
type NestSettings struct {
	StockLengths []float64 `json:"stock_lengths"` // Available bar lengths in mm, e.g. 6000, 12000
	KerfMM       float64   `json:"kerf_mm"`       // Saw blade width lost at each unshared cut
	ToleranceMM  float64   `json:"tolerance_mm"`  // Float rounding allowance when testing fits
	MinOffcutMM  float64   `json:"min_offcut_mm"` // Waste tails at least this long count as offcuts
}

// DefaultSettings returns the standard saw-shop configuration.
func DefaultSettings() NestSettings {
	return NestSettings{
		StockLengths: []float64{6000, 12000},
		KerfMM:       3.0,
		ToleranceMM:  0.1,
		MinOffcutMM:  500.0,
	}
}

// PlacedPart is a part assigned to a position along a specific stock bar.
type PlacedPart struct {
	Part          Part    `json:"part"`
	CutPositionMM float64 `json:"cut_position_mm"`
	LengthUsedMM  float64 `json:"length_used_mm"`
	// PairSecond marks the second half of a complementary slope pair. Its
	// CutPositionMM overlaps the previous part by the shared cut length.
	PairSecond bool `json:"complementary_pair,omitempty"`
}

// CuttingPattern is one stock bar's assignment of parts and cuts.
// Invariant: material used never exceeds StockLength plus the float tolerance.
type CuttingPattern struct {
	StockLength     float64      `json:"stock_length"`
	Parts           []PlacedPart `json:"parts"`
	WasteMM         float64      `json:"waste"`
	WastePercentage float64      `json:"waste_percentage"`
}

// MaterialUsed returns the stock length actually consumed by this pattern.
func (cp CuttingPattern) MaterialUsed() float64 {
	return cp.StockLength - cp.WasteMM
}

// PartsLength returns the summed individual part lengths, ignoring shared cuts.
func (cp CuttingPattern) PartsLength() float64 {
	var total float64
	for _, pp := range cp.Parts {
		total += pp.LengthUsedMM
	}
	return total
}

// Utilization returns the used percentage of the stock bar.
func (cp CuttingPattern) Utilization() float64 {
	if cp.StockLength == 0 {
		return 0
	}
	return (cp.MaterialUsed() / cp.StockLength) * 100.0
}

// RejectedPart records a part that could not be nested, with the reason and
// the stock-length context the rejection was decided against.
type RejectedPart struct {
	PartID      string  `json:"part_id"`
	Reference   string  `json:"reference,omitempty"`
	ProfileName string  `json:"profile_name"`
	LengthMM    float64 `json:"length_mm"`
	StockLength float64 `json:"stock_length"`
	Reason      string  `json:"reason"`
}

// ProfileNestingResult holds the nesting outcome for one profile group.
type ProfileNestingResult struct {
	ProfileName          string           `json:"profile_name"`
	TotalParts           int              `json:"total_parts"`
	TotalLength          float64          `json:"total_length"`
	StockUsage           map[string]int   `json:"stock_lengths_used"` // stock length (mm, as string) -> bar count
	Patterns             []CuttingPattern `json:"cutting_patterns"`
	TotalWaste           float64          `json:"total_waste"`
	TotalWastePercentage float64          `json:"total_waste_percentage"`
	Rejected             []RejectedPart   `json:"rejected_parts"`
}

// PlacedCount returns the number of parts placed across all patterns.
func (pr ProfileNestingResult) PlacedCount() int {
	n := 0
	for _, p := range pr.Patterns {
		n += len(p.Parts)
	}
	return n
}

// ReportSummary aggregates a nesting run across all profiles.
// AverageWastePercentage is weighted by stock length used, not a mean of
// per-pattern percentages.
type ReportSummary struct {
	TotalProfiles          int     `json:"total_profiles"`
	TotalParts             int     `json:"total_parts"`
	TotalStockBars         int     `json:"total_stock_bars"`
	TotalWaste             float64 `json:"total_waste"`
	AverageWastePercentage float64 `json:"average_waste_percentage"`
}

// NestingReport is the full result of one nesting invocation.
type NestingReport struct {
	Profiles []ProfileNestingResult `json:"profiles"`
	Summary  ReportSummary          `json:"summary"`
	Settings NestSettings           `json:"settings"`
}
