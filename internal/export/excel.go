package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/BarNest/internal/model"
)

// ExportExcel writes the nesting report as an Excel workbook: a Summary sheet
// with per-profile totals, plus one sheet per profile listing every bar, its
// cut sequence, and any rejected parts.
func ExportExcel(path string, report model.NestingReport) error {
	if len(report.Profiles) == 0 {
		return fmt.Errorf("no profiles to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E6E6E6"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummarySheet(f, report, headerStyle); err != nil {
		return err
	}

	for _, pr := range report.Profiles {
		if err := writeProfileSheet(f, pr, headerStyle); err != nil {
			return err
		}
	}

	// Drop the default sheet left over from NewFile.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, report model.NestingReport, headerStyle int) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Bar Nesting Summary"},
		{},
		{"Profiles", report.Summary.TotalProfiles},
		{"Total parts", report.Summary.TotalParts},
		{"Stock bars used", report.Summary.TotalStockBars},
		{"Total waste (mm)", report.Summary.TotalWaste},
		{"Average waste (%)", report.Summary.AverageWastePercentage},
		{"Kerf (mm)", report.Settings.KerfMM},
		{},
		{"Profile", "Parts", "Placed", "Rejected", "Bars", "Waste (mm)", "Waste (%)"},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A10", "G10", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}

	for i, pr := range report.Profiles {
		row := []interface{}{
			pr.ProfileName,
			pr.TotalParts,
			pr.PlacedCount(),
			len(pr.Rejected),
			len(pr.Patterns),
			pr.TotalWaste,
			pr.TotalWastePercentage,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", 11+i), &row); err != nil {
			return fmt.Errorf("failed to write profile summary row: %w", err)
		}
	}

	return nil
}

func writeProfileSheet(f *excelize.File, pr model.ProfileNestingResult, headerStyle int) error {
	// Sheet names cap at 31 characters in the xlsx format.
	sheet := pr.ProfileName
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	header := []interface{}{"Bar", "Stock (mm)", "Position (mm)", "Reference", "Length (mm)", "Shared cut"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	rowNum := 2
	for barIdx, pattern := range pr.Patterns {
		for _, pp := range pattern.Parts {
			ref := pp.Part.Reference
			if ref == "" {
				ref = pp.Part.ID
			}
			shared := ""
			if pp.PairSecond {
				shared = "yes"
			}
			row := []interface{}{
				barIdx + 1,
				pattern.StockLength,
				pp.CutPositionMM,
				ref,
				pp.Part.LengthMM,
				shared,
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return fmt.Errorf("failed to write part row: %w", err)
			}
			rowNum++
		}
		// Waste line closes each bar block.
		wasteRow := []interface{}{
			barIdx + 1, pattern.StockLength, "", "waste",
			pattern.WasteMM, "",
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &wasteRow); err != nil {
			return fmt.Errorf("failed to write waste row: %w", err)
		}
		rowNum++
	}

	if len(pr.Rejected) > 0 {
		rowNum++
		title := []interface{}{"Rejected parts"}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &title); err != nil {
			return fmt.Errorf("failed to write rejected title: %w", err)
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), headerStyle); err != nil {
			return fmt.Errorf("failed to style rejected title: %w", err)
		}
		rowNum++
		for _, r := range pr.Rejected {
			ref := r.Reference
			if ref == "" {
				ref = r.PartID
			}
			row := []interface{}{ref, r.LengthMM, r.Reason}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return fmt.Errorf("failed to write rejected row: %w", err)
			}
			rowNum++
		}
	}

	return nil
}
