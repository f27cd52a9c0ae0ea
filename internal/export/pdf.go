// Package export provides functionality for exporting bar nesting results
// to various file formats.
package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/BarNest/internal/model"
)

// partColor represents an RGB color for a placed part.
type partColor struct {
	R, G, B int
}

// partColors is the palette cycled across the parts of one bar.
var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	barHeight    = 12.0 // drawn height of one stock bar
	barSpacing   = 10.0 // vertical gap between bars
	drawAreaTop  = marginTop + headerHeight + 8.0
)

// ExportPDF generates a PDF document containing the nesting results. Each
// profile gets its own page(s) with one horizontal diagram per stock bar,
// followed by a summary page with overall statistics.
func ExportPDF(path string, report model.NestingReport) error {
	if len(report.Profiles) == 0 {
		return fmt.Errorf("no profiles to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, pr := range report.Profiles {
		renderProfilePages(pdf, pr)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, report)

	return pdf.OutputFileAndClose(path)
}

// renderProfilePages draws all cutting patterns of one profile, starting a new
// page whenever the vertical space runs out.
func renderProfilePages(pdf *fpdf.Fpdf, pr model.ProfileNestingResult) {
	pdf.AddPage()
	renderProfileHeader(pdf, pr)

	y := drawAreaTop
	for i, pattern := range pr.Patterns {
		if y+barHeight+barSpacing > pageHeight-marginBottom {
			pdf.AddPage()
			renderProfileHeader(pdf, pr)
			y = drawAreaTop
		}
		renderBar(pdf, pattern, i+1, y)
		y += barHeight + barSpacing
	}

	if len(pr.Rejected) > 0 {
		if y+8+float64(len(pr.Rejected))*5 > pageHeight-marginBottom {
			pdf.AddPage()
			renderProfileHeader(pdf, pr)
			y = drawAreaTop
		}
		renderRejections(pdf, pr.Rejected, y)
	}
}

// renderProfileHeader draws the profile title and stats line.
func renderProfileHeader(pdf *fpdf.Fpdf, pr model.ProfileNestingResult) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Profile %s", pr.ProfileName)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Parts: %d placed / %d total | Bars: %d | Waste: %.0f mm (%.1f%%)",
		pr.PlacedCount(), pr.TotalParts, len(pr.Patterns), pr.TotalWaste, pr.TotalWastePercentage)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
}

// renderBar draws one stock bar with its placed parts as colored segments.
// Pair-second parts overlap the previous segment; the overlap is drawn as a
// diagonal divider instead of a vertical one.
func renderBar(pdf *fpdf.Fpdf, pattern model.CuttingPattern, barNum int, y float64) {
	drawWidth := pageWidth - marginLeft - marginRight
	scale := drawWidth / pattern.StockLength

	// Bar caption
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y-4.5)
	caption := fmt.Sprintf("Bar %d - %.0f mm stock, %d parts, waste %.0f mm (%.1f%%)",
		barNum, pattern.StockLength, len(pattern.Parts), pattern.WasteMM, pattern.WastePercentage)
	pdf.CellFormat(drawWidth, 4, caption, "", 0, "L", false, 0, "")

	// Stock bar background (steel grey)
	pdf.SetFillColor(200, 205, 210)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(marginLeft, y, drawWidth, barHeight, "FD")

	for i, pp := range pattern.Parts {
		col := partColors[i%len(partColors)]
		px := marginLeft + pp.CutPositionMM*scale
		pw := pp.LengthUsedMM * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.25)
		if pp.PairSecond {
			// Shared diagonal boundary: draw the overlapping region as a
			// triangle wedge so the saw cut reads as one diagonal.
			pdf.Polygon([]fpdf.PointType{
				{X: px, Y: y + barHeight},
				{X: px + pw, Y: y},
				{X: px + pw, Y: y + barHeight},
			}, "FD")
		} else {
			pdf.Rect(px, y, pw, barHeight, "FD")
		}

		// Segment label (only if wide enough)
		if pw > 14 {
			pdf.SetFont("Helvetica", "", 6)
			pdf.SetTextColor(0, 0, 0)
			label := pp.Part.Reference
			if label == "" {
				label = pp.Part.ID
			}
			dims := fmt.Sprintf("%.0f", pp.Part.LengthMM)
			labelW := pdf.GetStringWidth(label)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, y+barHeight/2-3)
				pdf.CellFormat(labelW, 3, label, "", 0, "C", false, 0, "")
			}
			dimsW := pdf.GetStringWidth(dims)
			if dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, y+barHeight/2)
				pdf.CellFormat(dimsW, 3, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	// Length annotation under the bar
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	lenLabel := fmt.Sprintf("%.0f mm", pattern.StockLength)
	lw := pdf.GetStringWidth(lenLabel)
	pdf.SetXY(marginLeft+drawWidth-lw, y+barHeight+0.5)
	pdf.CellFormat(lw, 3.5, lenLabel, "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderRejections lists rejected parts under the bar diagrams.
func renderRejections(pdf *fpdf.Fpdf, rejected []model.RejectedPart, y float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(200, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 6, "Rejected parts", "", 0, "L", false, 0, "")
	y += 7

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, r := range rejected {
		ref := r.Reference
		if ref == "" {
			ref = r.PartID
		}
		pdf.SetXY(marginLeft+5, y)
		text := fmt.Sprintf("- %s (%.0f mm): %s", ref, r.LengthMM, r.Reason)
		pdf.CellFormat(250, 4.5, text, "", 0, "L", false, 0, "")
		y += 5
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, report model.NestingReport) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Bar Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Profiles Nested", fmt.Sprintf("%d", report.Summary.TotalProfiles)},
		{"Total Parts", fmt.Sprintf("%d", report.Summary.TotalParts)},
		{"Stock Bars Used", fmt.Sprintf("%d", report.Summary.TotalStockBars)},
		{"Total Waste", fmt.Sprintf("%.0f mm", report.Summary.TotalWaste)},
		{"Average Waste", fmt.Sprintf("%.1f%%", report.Summary.AverageWastePercentage)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-profile breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Profile Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{55, 30, 30, 30, 55, 35}
	headers := []string{"Profile", "Parts", "Placed", "Bars", "Waste (mm)", "Waste %"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, pr := range report.Profiles {
		xPos = marginLeft
		rowData := []string{
			pr.ProfileName,
			fmt.Sprintf("%d", pr.TotalParts),
			fmt.Sprintf("%d", pr.PlacedCount()),
			fmt.Sprintf("%d", len(pr.Patterns)),
			fmt.Sprintf("%.0f", pr.TotalWaste),
			fmt.Sprintf("%.1f%%", pr.TotalWastePercentage),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Settings summary
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Nesting Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Stock Lengths", formatStockLengths(report.Settings.StockLengths)},
		{"Kerf Width", fmt.Sprintf("%.1f mm", report.Settings.KerfMM)},
		{"Min Offcut", fmt.Sprintf("%.0f mm", report.Settings.MinOffcutMM)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by BarNest - Steel Bar Cut List Optimizer", "", 0, "C", false, 0, "")
}

// formatStockLengths renders stock lengths as "6000 / 12000 mm".
func formatStockLengths(lengths []float64) string {
	if len(lengths) == 0 {
		return "-"
	}
	s := ""
	for i, l := range lengths {
		if i > 0 {
			s += " / "
		}
		s += fmt.Sprintf("%.0f", l)
	}
	return s + " mm"
}
