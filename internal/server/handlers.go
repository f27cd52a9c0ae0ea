package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/piwi3910/BarNest/internal/engine"
	"github.com/piwi3910/BarNest/internal/export"
	"github.com/piwi3910/BarNest/internal/importer"
	"github.com/piwi3910/BarNest/internal/model"
	"github.com/piwi3910/BarNest/internal/project"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "barnest",
	})
}

// handleInventory returns the built-in stock presets and profile groups.
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, model.DefaultInventory())
}

// handleListProjects returns the names of all stored part lists.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list projects")
		s.writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"projects": names})
}

// handleUploadParts accepts a multipart CSV/XLSX part list, imports it, and
// stores it as a project named by the "name" form field (default: the file
// stem).
func (s *Server) handleUploadParts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "project name is required")
		return
	}

	// The importer dispatches on the file extension, so spool the upload to a
	// temp file carrying the original extension.
	tmp, err := os.CreateTemp("", "barnest-upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create temp file")
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.log.Error().Err(err).Msg("Failed to spool upload")
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	tmp.Close()

	result := importer.Import(tmp.Name())
	if len(result.Parts) == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "no parts could be imported",
			"errors":   result.Errors,
			"warnings": result.Warnings,
		})
		return
	}

	p := &project.Project{
		Name:     name,
		Parts:    result.Parts,
		Settings: s.settings,
	}
	if err := s.store.Save(p); err != nil {
		s.log.Error().Err(err).Str("project", name).Msg("Failed to save project")
		s.writeError(w, http.StatusInternalServerError, "failed to save project")
		return
	}

	s.log.Info().Str("project", name).Int("parts", len(result.Parts)).Msg("Part list uploaded")
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"project":        name,
		"parts_imported": len(result.Parts),
		"errors":         result.Errors,
		"warnings":       result.Warnings,
	})
}

// handleNesting runs the engine over a stored part list and returns the
// report. Query parameters: stock_lengths (comma-separated mm, optional),
// profiles (comma-separated, default all profiles in the list), and group
// (a built-in profile group name, used when profiles is absent).
func (s *Server) handleNesting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := s.store.Load(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown part list %q", name))
			return
		}
		s.log.Error().Err(err).Str("project", name).Msg("Failed to load project")
		s.writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	settings := s.settings
	if raw := r.URL.Query().Get("stock_lengths"); raw != "" {
		lengths, err := parseLengths(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		settings.StockLengths = lengths
	}

	profiles := splitParam(r.URL.Query().Get("profiles"))
	if len(profiles) == 0 {
		if group := r.URL.Query().Get("group"); group != "" {
			inv := model.DefaultInventory()
			g := inv.FindGroupByName(group)
			if g == nil {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown profile group %q", group))
				return
			}
			profiles = g.Profiles
		} else {
			profiles = collectProfiles(p.Parts)
		}
	}

	nester := engine.New(settings, s.log)
	report, err := nester.Nest(p.Parts, profiles)
	if err != nil {
		if engine.IsInputError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Str("project", name).Msg("Nesting failed")
		s.writeError(w, http.StatusInternalServerError, "nesting failed")
		return
	}

	p.Settings = settings
	p.Report = &report
	if err := s.store.Save(p); err != nil {
		s.log.Error().Err(err).Str("project", name).Msg("Failed to persist report")
		s.writeError(w, http.StatusInternalServerError, "failed to persist report")
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

// handleOffcuts returns the reusable offcuts of a part list's last nesting.
func (s *Server) handleOffcuts(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := s.store.Load(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown part list %q", name))
			return
		}
		s.log.Error().Err(err).Str("project", name).Msg("Failed to load project")
		s.writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}
	if p.Report == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("part list %q has not been nested yet", name))
		return
	}

	offcuts := model.DetectAllOffcuts(*p.Report, p.Settings.MinOffcutMM)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"offcuts":         offcuts,
		"total_length_mm": model.TotalOffcutLength(offcuts),
	})
}

// handleEstimate returns a purchase estimate for a part list. Query
// parameters: stock_length (mm, default longest configured stock),
// waste_percent (default 10) and price (per bar, default 0).
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := s.store.Load(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown part list %q", name))
			return
		}
		s.log.Error().Err(err).Str("project", name).Msg("Failed to load project")
		s.writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	stockLength := 0.0
	for _, l := range p.Settings.StockLengths {
		if l > stockLength {
			stockLength = l
		}
	}
	wastePercent := 10.0
	price := 0.0
	q := r.URL.Query()
	if raw := q.Get("stock_length"); raw != "" {
		if stockLength, err = strconv.ParseFloat(raw, 64); err != nil || stockLength <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid stock_length %q", raw))
			return
		}
	}
	if raw := q.Get("waste_percent"); raw != "" {
		if wastePercent, err = strconv.ParseFloat(raw, 64); err != nil || wastePercent < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid waste_percent %q", raw))
			return
		}
	}
	if raw := q.Get("price"); raw != "" {
		if price, err = strconv.ParseFloat(raw, 64); err != nil || price < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid price %q", raw))
			return
		}
	}

	est := model.CalculatePurchaseEstimate(p.Parts, stockLength, p.Settings.KerfMM, wastePercent, price)
	s.writeJSON(w, http.StatusOK, est)
}

// exportKinds maps the export kind URL segment to its renderer, file
// extension, and content type.
var exportKinds = map[string]struct {
	render      func(path string, report model.NestingReport) error
	ext         string
	contentType string
}{
	"pdf":    {export.ExportPDF, ".pdf", "application/pdf"},
	"labels": {export.ExportLabels, ".pdf", "application/pdf"},
	"xlsx":   {export.ExportExcel, ".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	"dxf":    {export.ExportDXF, ".dxf", "application/dxf"},
}

// handleExport renders the last nesting report of a part list to the
// requested format and serves it as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	kind := chi.URLParam(r, "kind")

	spec, ok := exportKinds[kind]
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export kind %q", kind))
		return
	}

	p, err := s.store.Load(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown part list %q", name))
			return
		}
		s.log.Error().Err(err).Str("project", name).Msg("Failed to load project")
		s.writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}
	if p.Report == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("part list %q has not been nested yet", name))
		return
	}

	tmp, err := os.CreateTemp("", "barnest-export-*"+spec.ext)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create temp file")
		s.writeError(w, http.StatusInternalServerError, "failed to render export")
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := spec.render(tmp.Name(), *p.Report); err != nil {
		s.log.Error().Err(err).Str("project", name).Str("kind", kind).Msg("Export failed")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("export failed: %v", err))
		return
	}

	filename := fmt.Sprintf("%s-%s%s", name, kind, spec.ext)
	w.Header().Set("Content-Type", spec.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, tmp.Name())
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// parseLengths parses comma-separated stock lengths in mm.
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
		return nil, fmt.Errorf("stock_lengths is empty")
	}
	return lengths, nil
}

// splitParam splits a comma-separated query parameter into trimmed tokens.
func splitParam(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// collectProfiles returns the sorted set of base profile names in a part list.
func collectProfiles(parts []model.Part) []string {
	seen := make(map[string]bool)
	for _, p := range parts {
		seen[model.BaseProfileName(p.ProfileName)] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
