// Package importer provides CSV and Excel import functionality for bar cut
// lists. It supports automatic delimiter detection, flexible column mapping,
// and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/BarNest/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Parts    []model.Part
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Reference  int
	Profile    int
	Length     int
	Quantity   int
	StartAngle int
	StartConf  int
	EndAngle   int
	EndConf    int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"reference":   {"reference", "ref", "name", "part", "part name", "mark", "assembly mark", "item", "label"},
	"profile":     {"profile", "profile name", "section", "section name", "material"},
	"length":      {"length", "length_mm", "length mm", "len", "l", "cut length"},
	"quantity":    {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"start_angle": {"start angle", "start_angle", "angle start", "angle1", "start cut", "start cut angle"},
	"start_conf":  {"start confidence", "start_confidence", "conf start", "conf1", "start conf"},
	"end_angle":   {"end angle", "end_angle", "angle end", "angle2", "end cut", "end cut angle"},
	"end_conf":    {"end confidence", "end_confidence", "conf end", "conf2", "end conf"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the first row
		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Reference:  -1,
		Profile:    -1,
		Length:     -1,
		Quantity:   -1,
		StartAngle: -1,
		StartConf:  -1,
		EndAngle:   -1,
		EndConf:    -1,
	}

	assign := func(role string, idx int) {
		switch role {
		case "reference":
			if mapping.Reference == -1 {
				mapping.Reference = idx
			}
		case "profile":
			if mapping.Profile == -1 {
				mapping.Profile = idx
			}
		case "length":
			if mapping.Length == -1 {
				mapping.Length = idx
			}
		case "quantity":
			if mapping.Quantity == -1 {
				mapping.Quantity = idx
			}
		case "start_angle":
			if mapping.StartAngle == -1 {
				mapping.StartAngle = idx
			}
		case "start_conf":
			if mapping.StartConf == -1 {
				mapping.StartConf = idx
			}
		case "end_angle":
			if mapping.EndAngle == -1 {
				mapping.EndAngle = idx
			}
		case "end_conf":
			if mapping.EndConf == -1 {
				mapping.EndConf = idx
			}
		}
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					assign(role, i)
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: Reference, Profile, Length, Quantity,
		// StartAngle, StartConf, EndAngle, EndConf
		return ColumnMapping{
			Reference:  0,
			Profile:    1,
			Length:     2,
			Quantity:   3,
			StartAngle: 4,
			StartConf:  5,
			EndAngle:   6,
			EndConf:    7,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseCutEnd reads an optional angle/confidence column pair into a CutEnd.
// An empty angle cell means a straight cut (nil). A missing confidence column
// defaults to full confidence.
func parseCutEnd(row []string, angleIdx, confIdx int, rowLabel, side string) (*model.CutEnd, string) {
	angleStr := getCell(row, angleIdx)
	if angleStr == "" {
		return nil, ""
	}
	angle, err := strconv.ParseFloat(angleStr, 64)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid %s angle '%s'", rowLabel, side, angleStr)
	}

	conf := 1.0
	if confStr := getCell(row, confIdx); confStr != "" {
		conf, err = strconv.ParseFloat(confStr, 64)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid %s confidence '%s'", rowLabel, side, confStr)
		}
	}

	return &model.CutEnd{AngleDeg: angle, Confidence: conf}, ""
}

// parseRow extracts parts from a row using the given column mapping, expanding
// the quantity column into that many identical parts with distinct IDs.
// Returns the parts and any error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, partCount int) ([]model.Part, string) {
	reference := getCell(row, mapping.Reference)
	if reference == "" {
		reference = fmt.Sprintf("Part %d", partCount+1)
	}

	profile := getCell(row, mapping.Profile)
	if profile == "" {
		return nil, fmt.Sprintf("%s: Missing profile value", rowLabel)
	}

	lengthStr := getCell(row, mapping.Length)
	if lengthStr == "" {
		return nil, fmt.Sprintf("%s: Missing length value", rowLabel)
	}
	length, err := strconv.ParseFloat(lengthStr, 64)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid length '%s'", rowLabel, lengthStr)
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr)
		}
	}

	if length <= 0 || qty <= 0 {
		return nil, fmt.Sprintf("%s: Length and quantity must be positive", rowLabel)
	}

	startCut, errMsg := parseCutEnd(row, mapping.StartAngle, mapping.StartConf, rowLabel, "start")
	if errMsg != "" {
		return nil, errMsg
	}
	endCut, errMsg := parseCutEnd(row, mapping.EndAngle, mapping.EndConf, rowLabel, "end")
	if errMsg != "" {
		return nil, errMsg
	}

	parts := make([]model.Part, 0, qty)
	for i := 0; i < qty; i++ {
		p := model.NewPart(reference, profile, length)
		p.StartCut = startCut
		p.EndCut = endCut
		parts = append(parts, p)
	}
	return parts, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports parts from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	result = importFromRows(records, "Line", result.Warnings)
	return result
}

// ImportCSVFromReader imports parts from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports parts from an Excel (.xlsx, .xls) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// Import dispatches on file extension: .xlsx/.xls go through excelize,
// everything else is treated as delimited text.
func Import(path string) ImportResult {
	switch strings.ToLower(strings.TrimPrefix(extOf(path), ".")) {
	case "xlsx", "xls", "xlsm":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

func extOf(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[idx:]
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into parts.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	// Detect columns from first row
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		// Validate that required columns were found
		missing := []string{}
		if mapping.Profile == -1 {
			missing = append(missing, "Profile")
		}
		if mapping.Length == -1 {
			missing = append(missing, "Length")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// No header: check if the length column is numeric (positional mapping)
		if len(rows[0]) >= 3 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][2]), 64); err != nil {
				// Third column is not numeric - might be an unrecognized header
				// Skip it as a header but use positional mapping
				startRow = 1
				result.Warnings = append(result.Warnings, "Detected header row, skipping")
			}
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		parts, errMsg := parseRow(row, mapping, rowLabel, len(result.Parts))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		result.Parts = append(result.Parts, parts...)
	}

	return result
}
