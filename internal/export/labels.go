// QR-coded saw labels for cut parts.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/BarNest/internal/model"
)

// LabelInfo holds the data encoded into each part label's QR code.
type LabelInfo struct {
	PartID      string  `json:"part_id"`
	Reference   string  `json:"reference"`
	ProfileName string  `json:"profile"`
	LengthMM    float64 `json:"length_mm"`
	BarIndex    int     `json:"bar"`
	StockLength float64 `json:"stock_length_mm"`
	PositionMM  float64 `json:"position_mm"`
	PairSecond  bool    `json:"shared_cut,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels for all placed parts.
// Each label carries the part reference, profile, length, and a QR code
// encoding part metadata as JSON, so parts can be tracked from saw to
// assembly. Labels are laid out on a standard label sheet format
// (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, report model.NestingReport) error {
	labels := CollectLabelInfos(report)
	if len(labels) == 0 {
		return fmt.Errorf("no parts placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Reference, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.PartID, info.BarIndex)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Part reference (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	reference := info.Reference
	if reference == "" {
		reference = info.PartID
	}
	if pdf.GetStringWidth(reference) > textW {
		for len(reference) > 0 && pdf.GetStringWidth(reference+"...") > textW {
			reference = reference[:len(reference)-1]
		}
		reference += "..."
	}
	pdf.CellFormat(textW, 4.5, reference, "", 1, "L", false, 0, "")

	// Profile and length
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%s - %.0f mm", info.ProfileName, info.LengthMM)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	// Bar and position info
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	barInfo := fmt.Sprintf("Bar %d (%.0f mm) @ %.0f mm", info.BarIndex, info.StockLength, info.PositionMM)
	pdf.CellFormat(textW, 3, barInfo, "", 1, "L", false, 0, "")

	// Shared cut indicator
	if info.PairSecond {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Shared diagonal cut", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectLabelInfos extracts label information from a nesting report for use
// in testing or alternative export formats. Bar indices run across the whole
// report, matching the bar numbering in the PDF diagrams.
func CollectLabelInfos(report model.NestingReport) []LabelInfo {
	var labels []LabelInfo
	for _, pr := range report.Profiles {
		for barIdx, pattern := range pr.Patterns {
			for _, pp := range pattern.Parts {
				labels = append(labels, LabelInfo{
					PartID:      pp.Part.ID,
					Reference:   pp.Part.Reference,
					ProfileName: pp.Part.ProfileName,
					LengthMM:    pp.Part.LengthMM,
					BarIndex:    barIdx + 1,
					StockLength: pattern.StockLength,
					PositionMM:  pp.CutPositionMM,
					PairSecond:  pp.PairSecond,
				})
			}
		}
	}
	return labels
}
