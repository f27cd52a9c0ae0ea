package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BarNest/internal/model"
	"github.com/piwi3910/BarNest/internal/project"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{
		Port:     0,
		Log:      zerolog.Nop(),
		Store:    project.NewStore(t.TempDir()),
		Settings: model.DefaultSettings(),
		DevMode:  true,
	})
}

func uploadCSV(t *testing.T, srv *Server, name, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", name))
	fw, err := mw.CreateFormFile("file", "parts.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/parts/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

const testCSV = "Reference,Profile,Length,Quantity\n" +
	"B-1,IPE300,5000,2\n" +
	"B-2,IPE300,5000,1\n" +
	"C-1,HEA200,4000,1\n"

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
	}
}

func TestUploadParts(t *testing.T) {
	srv := newTestServer(t)

	rec := uploadCSV(t, srv, "hall-7", testCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Project       string `json:"project"`
		PartsImported int    `json:"parts_imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hall-7", body.Project)
	assert.Equal(t, 4, body.PartsImported, "quantity column expands")

	// The project is now listed.
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	listRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	var listing struct {
		Projects []string `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listing))
	assert.Equal(t, []string{"hall-7"}, listing.Projects)
}

func TestUploadParts_NoFile(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/parts/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadParts_UnusableFile(t *testing.T) {
	srv := newTestServer(t)

	rec := uploadCSV(t, srv, "bad", "Reference,Profile,Length\nB-1,IPE300,abc\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNesting(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/nesting/hall-7", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report model.NestingReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Profiles, 2, "both profiles nested by default")
	assert.Equal(t, 4, report.Summary.TotalParts)
	for _, pr := range report.Profiles {
		assert.Equal(t, pr.TotalParts, pr.PlacedCount()+len(pr.Rejected))
	}
}

func TestNesting_ProfileFilterAndStockOverride(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	req := httptest.NewRequest(http.MethodGet,
		"/api/nesting/hall-7?profiles=IPE300&stock_lengths=6000", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report model.NestingReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Profiles, 1)
	assert.Equal(t, "IPE300", report.Profiles[0].ProfileName)
	assert.Equal(t, []float64{6000}, report.Settings.StockLengths)
}

func TestNesting_ProfileGroup(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	// "Columns" includes HEA200 but no IPE300.
	req := httptest.NewRequest(http.MethodGet, "/api/nesting/hall-7?group=Columns", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report model.NestingReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Profiles, 1)
	assert.Equal(t, "HEA200", report.Profiles[0].ProfileName)

	req = httptest.NewRequest(http.MethodGet, "/api/nesting/hall-7?group=Plates", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInventory(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var inv model.Inventory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Equal(t, []float64{6000, 12000, 15000}, inv.StockLengths())
	assert.NotNil(t, inv.FindGroupByName("Beams"))
}

func TestNesting_UnknownProject(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nesting/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNesting_BadProfiles(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/nesting/hall-7?profiles=HEB500", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no parts found for selected profiles")
}

func TestNesting_BadStockLengths(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/nesting/hall-7?stock_lengths=abc", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	// Export before nesting is a 404.
	req := httptest.NewRequest(http.MethodGet, "/api/export/hall-7/pdf", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Nest, then export each kind.
	req = httptest.NewRequest(http.MethodGet, "/api/nesting/hall-7", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	kinds := map[string]string{
		"pdf":    "application/pdf",
		"labels": "application/pdf",
		"xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"dxf":    "application/dxf",
	}
	for kind, contentType := range kinds {
		req = httptest.NewRequest(http.MethodGet, "/api/export/hall-7/"+kind, nil)
		rec = httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, kind)
		assert.Equal(t, contentType, rec.Header().Get("Content-Type"), kind)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), kind)
		assert.NotZero(t, rec.Body.Len(), kind)
	}
}

func TestOffcuts(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	// Before nesting there is no report to scan.
	req := httptest.NewRequest(http.MethodGet, "/api/offcuts/hall-7", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/nesting/hall-7", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/offcuts/hall-7", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Offcuts       []model.Offcut `json:"offcuts"`
		TotalLengthMM float64        `json:"total_length_mm"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Three 5000mm IPE300 parts leave 2000mm on the 12000 bar and 1000mm on
	// the 6000 bar; the HEA200 4000mm part leaves 2000mm on its 6000 bar.
	require.Len(t, body.Offcuts, 3)
	assert.Equal(t, 5000.0, body.TotalLengthMM)
	assert.Equal(t, 2000.0, body.Offcuts[0].LengthMM, "sorted longest first")
}

func TestEstimate(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, uploadCSV(t, srv, "hall-7", testCSV).Code)

	req := httptest.NewRequest(http.MethodGet,
		"/api/estimate/hall-7?stock_length=12000&price=250", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var est model.PurchaseEstimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Equal(t, 19012.0, est.TotalPartLength, "4 parts, one kerf each")
	assert.Equal(t, 2, est.BarsNeededMin)
	assert.Equal(t, 2, est.BarsWithWaste)
	assert.Equal(t, 500.0, est.EstimatedCost)

	req = httptest.NewRequest(http.MethodGet, "/api/estimate/hall-7?stock_length=nope", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/estimate/missing", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport_UnknownKind(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/export/hall-7/docx", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
