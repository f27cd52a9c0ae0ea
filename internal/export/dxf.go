package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/BarNest/internal/model"
)

// Vertical gap between bar outlines in the DXF drawing, in mm.
const dxfBarGap = 200.0

// ExportDXF writes the cutting diagrams as a DXF drawing, one bar outline per
// pattern with cut lines at every part boundary. Shared diagonal cuts are
// drawn at their true slope across the profile depth, so the drawing can be
// checked against the saw program. All geometry is in mm at 1:1 scale.
func ExportDXF(path string, report model.NestingReport) error {
	if len(report.Profiles) == 0 {
		return fmt.Errorf("no profiles to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer("BARS", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add BARS layer: %w", err)
	}
	if _, err := d.AddLayer("CUTS", color.Red, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add CUTS layer: %w", err)
	}
	if _, err := d.AddLayer("NOTES", color.Green, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add NOTES layer: %w", err)
	}

	y := 0.0
	for _, pr := range report.Profiles {
		depth := model.ProfileDepth(pr.ProfileName)
		for barIdx, pattern := range pr.Patterns {
			if err := drawBar(d, pr.ProfileName, pattern, barIdx+1, y, depth); err != nil {
				return err
			}
			y -= depth + dxfBarGap
		}
	}

	return d.SaveAs(path)
}

// drawBar renders one stock bar outline with its cut lines, at vertical
// offset y (bars stack downward).
func drawBar(d *drawing.Drawing, profileName string, pattern model.CuttingPattern, barNum int, y, depth float64) error {
	if err := d.ChangeLayer("BARS"); err != nil {
		return fmt.Errorf("failed to switch layer: %w", err)
	}
	// Bar outline
	outline := [][4]float64{
		{0, y, pattern.StockLength, y},
		{pattern.StockLength, y, pattern.StockLength, y + depth},
		{pattern.StockLength, y + depth, 0, y + depth},
		{0, y + depth, 0, y},
	}
	for _, l := range outline {
		if _, err := d.Line(l[0], l[1], 0, l[2], l[3], 0); err != nil {
			return fmt.Errorf("failed to draw bar outline: %w", err)
		}
	}

	if err := d.ChangeLayer("CUTS"); err != nil {
		return fmt.Errorf("failed to switch layer: %w", err)
	}
	for i, pp := range pattern.Parts {
		end := pp.CutPositionMM + pp.LengthUsedMM
		if pp.PairSecond && i > 0 {
			// Shared diagonal: from this part's start at the bottom edge to
			// the previous part's end at the top edge.
			prev := pattern.Parts[i-1]
			prevEnd := prev.CutPositionMM + prev.LengthUsedMM
			if _, err := d.Line(pp.CutPositionMM, y, 0, prevEnd, y+depth, 0); err != nil {
				return fmt.Errorf("failed to draw diagonal cut: %w", err)
			}
		} else if pp.CutPositionMM > 0 {
			if _, err := d.Line(pp.CutPositionMM, y, 0, pp.CutPositionMM, y+depth, 0); err != nil {
				return fmt.Errorf("failed to draw cut line: %w", err)
			}
		}
		// Trailing cut of the last part, unless it lands on the bar end.
		if i == len(pattern.Parts)-1 && end < pattern.StockLength {
			if _, err := d.Line(end, y, 0, end, y+depth, 0); err != nil {
				return fmt.Errorf("failed to draw final cut line: %w", err)
			}
		}
	}

	if err := d.ChangeLayer("NOTES"); err != nil {
		return fmt.Errorf("failed to switch layer: %w", err)
	}
	note := fmt.Sprintf("%s bar %d: %.0f mm stock, %d parts, waste %.0f mm",
		profileName, barNum, pattern.StockLength, len(pattern.Parts), pattern.WasteMM)
	if _, err := d.Text(note, 0, y+depth+20, 0, depth/4); err != nil {
		return fmt.Errorf("failed to draw bar note: %w", err)
	}
	for _, pp := range pattern.Parts {
		ref := pp.Part.Reference
		if ref == "" {
			ref = pp.Part.ID
		}
		if _, err := d.Text(ref, pp.CutPositionMM+10, y+depth/2, 0, depth/5); err != nil {
			return fmt.Errorf("failed to draw part label: %w", err)
		}
	}

	return nil
}
