// BarNest — Steel Bar Cut List Optimizer
//
// Command-line front end: import a part list, nest it onto stock bars,
// print the result, and optionally write PDF / Excel / label / DXF output.
//
// Usage:
//
//	barnest -in parts.csv -stock 6000,12000 -pdf cutlist.pdf
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/BarNest/internal/config"
	"github.com/piwi3910/BarNest/internal/engine"
	"github.com/piwi3910/BarNest/internal/export"
	"github.com/piwi3910/BarNest/internal/importer"
	"github.com/piwi3910/BarNest/internal/model"
)

func main() {
	var (
		inPath    = flag.String("in", "", "part list to import (csv, xlsx)")
		stock     = flag.String("stock", "", "comma-separated stock lengths in mm (default from config)")
		profiles  = flag.String("profiles", "", "comma-separated profiles to nest (default: all)")
		group     = flag.String("group", "", "built-in profile group to nest (e.g. Beams)")
		pdfPath   = flag.String("pdf", "", "write cutting diagram PDF to this path")
		xlsxPath  = flag.String("xlsx", "", "write Excel report to this path")
		labelPath = flag.String("labels", "", "write QR label sheet PDF to this path")
		dxfPath   = flag.String("dxf", "", "write DXF cutting diagram to this path")
	)
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "barnest: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "barnest: %v\n", err)
		os.Exit(1)
	}
	log := cfg.NewLogger()

	result := importer.Import(*inPath)
	for _, w := range result.Warnings {
		log.Warn().Msg(w)
	}
	for _, e := range result.Errors {
		log.Error().Msg(e)
	}
	if len(result.Parts) == 0 {
		fmt.Fprintln(os.Stderr, "barnest: no parts could be imported")
		os.Exit(1)
	}
	log.Info().Int("parts", len(result.Parts)).Str("file", *inPath).Msg("Part list imported")

	settings := cfg.Settings()
	if *stock != "" {
		lengths, err := parseLengths(*stock)
		if err != nil {
			fmt.Fprintf(os.Stderr, "barnest: %v\n", err)
			os.Exit(2)
		}
		settings.StockLengths = lengths
	}

	selected := splitList(*profiles)
	if len(selected) == 0 && *group != "" {
		inv := model.DefaultInventory()
		g := inv.FindGroupByName(*group)
		if g == nil {
			fmt.Fprintf(os.Stderr, "barnest: unknown profile group %q\n", *group)
			os.Exit(2)
		}
		selected = g.Profiles
	}
	if len(selected) == 0 {
		selected = profileNames(result.Parts)
	}

	nester := engine.New(settings, log)
	report, err := nester.Nest(result.Parts, selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "barnest: %v\n", err)
		os.Exit(1)
	}

	printReport(report)

	if offcuts := model.DetectAllOffcuts(report, settings.MinOffcutMM); len(offcuts) > 0 {
		fmt.Printf("\nReusable offcuts (>= %.0fmm):\n", settings.MinOffcutMM)
		for _, oc := range offcuts {
			fmt.Printf("  %-12s %8.0fmm  (bar %d, %.0fmm stock)\n",
				oc.ProfileName, oc.LengthMM, oc.BarIndex, oc.StockLength)
		}
	}

	exports := []struct {
		path   string
		render func(path string, report model.NestingReport) error
	}{
		{*pdfPath, export.ExportPDF},
		{*xlsxPath, export.ExportExcel},
		{*labelPath, export.ExportLabels},
		{*dxfPath, export.ExportDXF},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.render(e.path, report); err != nil {
			fmt.Fprintf(os.Stderr, "barnest: export %s: %v\n", e.path, err)
			os.Exit(1)
		}
		log.Info().Str("file", e.path).Msg("Export written")
	}
}

// printReport writes a per-profile summary table to stdout.
func printReport(report model.NestingReport) {
	fmt.Printf("%-12s %6s %6s %6s %12s %10s\n",
		"Profile", "Parts", "Placed", "Bars", "Waste (mm)", "Waste %")
	placed := 0
	for _, pr := range report.Profiles {
		placed += pr.PlacedCount()
		fmt.Printf("%-12s %6d %6d %6d %12.0f %9.1f%%\n",
			pr.ProfileName, pr.TotalParts, pr.PlacedCount(), len(pr.Patterns),
			pr.TotalWaste, pr.TotalWastePercentage)
		for _, rej := range pr.Rejected {
			fmt.Printf("  rejected %s (%s, %.0fmm): %s\n",
				rej.Reference, rej.ProfileName, rej.LengthMM, rej.Reason)
		}
	}
	s := report.Summary
	fmt.Printf("\nTotal: %d/%d parts on %d bars, %.0fmm waste (%.1f%%)\n",
		placed, s.TotalParts, s.TotalStockBars, s.TotalWaste, s.AverageWastePercentage)
}

func parseLengths(raw string) ([]float64, error) {
	var lengths []float64
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid stock length %q", tok)
		}
		lengths = append(lengths, v)
	}
	if len(lengths) == 0 {
		return nil, fmt.Errorf("no stock lengths given")
	}
	return lengths, nil
}

func splitList(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func profileNames(parts []model.Part) []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range parts {
		base := model.BaseProfileName(p.ProfileName)
		if !seen[base] {
			seen[base] = true
			names = append(names, base)
		}
	}
	return names
}
