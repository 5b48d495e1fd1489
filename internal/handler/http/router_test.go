package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/report-dashboard/internal/config"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/attendance"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/coe"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/lead"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/jwt"
	authService "github.com/cmlabs-hris/report-dashboard/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	handlerTestAccessExp = "1h"
	handlerTestSecret    = "test-secret-key-for-jwt"
)

// ========================================
// FAKES
// ========================================

type fakeLeadService struct {
	err error
}

func (f *fakeLeadService) Preview(ctx context.Context, req lead.PreviewRequest) (lead.Preview, error) {
	if f.err != nil {
		return lead.Preview{}, f.err
	}
	return lead.Preview{Filename: req.Filename(), HeaderRow: 1, RecordCount: 2, Columns: []string{"Name"}}, nil
}

type fakeCOEService struct {
	coe.COEService
}

func (f *fakeCOEService) ExportExpiryReport(ctx context.Context, req coe.ReportRequest) (report.ExportFile, error) {
	return report.ExportFile{
		Filename:    "COE_Expiry_Report_2026-01-21.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("xlsx-bytes"),
	}, nil
}

func (f *fakeCOEService) GenerateSalesReport(ctx context.Context, req coe.ReportRequest) (coe.SalesReport, error) {
	return coe.SalesReport{}, coe.ErrColumnOutOfRange
}

type fakeAttendanceService struct {
	lastReport  attendance.ReportRequest
	lastWarning attendance.WarningRequest
	err         error
}

func (f *fakeAttendanceService) GenerateReport(ctx context.Context, req attendance.ReportRequest) (attendance.Report, error) {
	f.lastReport = req
	if f.err != nil {
		return attendance.Report{}, f.err
	}
	return attendance.Report{Filename: req.Filename()}, nil
}

func (f *fakeAttendanceService) ExportReport(ctx context.Context, req attendance.ReportRequest) (report.ExportFile, error) {
	return report.ExportFile{}, f.err
}

func (f *fakeAttendanceService) GenerateWarnings(ctx context.Context, req attendance.WarningRequest) (attendance.WarningResponse, error) {
	f.lastWarning = req
	if f.err != nil {
		return attendance.WarningResponse{}, f.err
	}
	return attendance.WarningResponse{Drafts: []attendance.WarningDraft{}}, nil
}

type fakeUploadService struct {
	report.UploadService
	lastFilter report.UploadFilter
	disabled   bool
}

func (f *fakeUploadService) List(ctx context.Context, filter report.UploadFilter) ([]report.UploadResponse, error) {
	f.lastFilter = filter
	if f.disabled {
		return nil, report.ErrUploadLogDisabled
	}
	return []report.UploadResponse{{ID: "u1", Filename: "january.xlsx"}}, nil
}

func (f *fakeUploadService) Open(ctx context.Context, id string) (report.UploadResponse, io.ReadCloser, error) {
	if id != "u1" {
		return report.UploadResponse{}, nil, report.ErrUploadNotFound
	}
	return report.UploadResponse{ID: id, Filename: "january.xlsx"}, io.NopCloser(strings.NewReader("raw")), nil
}

// ========================================
// HELPERS
// ========================================

type testServer struct {
	handler    http.Handler
	attendance *fakeAttendanceService
	uploads    *fakeUploadService
	leads      *fakeLeadService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	jwtService := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	auth := authService.NewAuthService(config.AdminConfig{Username: "admin", PasswordHash: string(hash)}, jwtService)

	ts := &testServer{
		attendance: &fakeAttendanceService{},
		uploads:    &fakeUploadService{},
		leads:      &fakeLeadService{},
	}
	ts.handler = NewRouter(config.AppConfig{Env: "test", FrontendURL: "http://localhost:3000"}, jwtService, Handlers{
		Auth:       NewAuthHandler(auth),
		Lead:       NewLeadHandler(ts.leads),
		COE:        NewCOEHandler(&fakeCOEService{}),
		Attendance: NewAttendanceHandler(ts.attendance),
		Upload:     NewUploadHandler(ts.uploads),
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	body := `{"username":"admin","password":"password123"}`
	w := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

// multipartRequest builds an authenticated upload; an empty filename omits the file part
func multipartRequest(t *testing.T, target, token, filename string, fields map[string][]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("content"))
		require.NoError(t, err)
	}
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// ========================================
// AUTH
// ========================================

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t)

	w := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	details := resp["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "username")

	w = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(multipartRequest(t, "/api/v1/reports/leads", "", "leads.xlsx", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(multipartRequest(t, "/api/v1/reports/leads", "garbage", "leads.xlsx", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(multipartRequest(t, "/api/v1/reports/leads", token, "leads.xlsx", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ========================================
// REPORTS
// ========================================

func TestLeadPreview(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	w := ts.do(multipartRequest(t, "/api/v1/reports/leads", token, "leads.xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.True(t, resp["success"].(bool))
	assert.Equal(t, "leads.xlsx", resp["data"].(map[string]interface{})["filename"])

	w = ts.do(multipartRequest(t, "/api/v1/reports/leads", token, "", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(multipartRequest(t, "/api/v1/reports/leads", token, "leads.csv", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	ts.leads.err = lead.ErrNoNamedColumns
	w = ts.do(multipartRequest(t, "/api/v1/reports/leads", token, "leads.xlsx", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCOEEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	w := ts.do(multipartRequest(t, "/api/v1/reports/coe/expiry/download", token, "coe.xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xlsx-bytes", w.Body.String())
	assert.Equal(t, `attachment; filename=COE_Expiry_Report_2026-01-21.xlsx`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	w = ts.do(multipartRequest(t, "/api/v1/reports/coe/sales", token, "coe.xlsx", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAttendanceReport(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	w := ts.do(multipartRequest(t, "/api/v1/reports/attendance", token, "clock.xlsx", map[string][]string{
		"thresholds": {`{"late_threshold":"10:00","full_day_minutes":420}`},
	}))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.attendance.lastReport.Thresholds)
	assert.Equal(t, "10:00", *ts.attendance.lastReport.Thresholds.LateThreshold)
	assert.Equal(t, 420, *ts.attendance.lastReport.Thresholds.FullDayMinutes)

	w = ts.do(multipartRequest(t, "/api/v1/reports/attendance", token, "clock.xlsx", map[string][]string{
		"thresholds": {`not json`},
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.attendance.err = &attendance.MissingColumnError{Columns: []string{"time"}, Headers: []string{"Name", "Date"}}
	w = ts.do(multipartRequest(t, "/api/v1/reports/attendance", token, "clock.xlsx", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Contains(t, resp["error"].(map[string]interface{})["message"], "time")
}

func TestAttendanceWarnings(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	w := ts.do(multipartRequest(t, "/api/v1/reports/attendance/warnings", token, "clock.xlsx", map[string][]string{
		"employees":  {"John Doe", "Jane Smith"},
		"recipients": {`{"John Doe":"john@example.com","Jane Smith":"jane@example.com"}`},
		"send":       {"true"},
	}))
	require.Equal(t, http.StatusOK, w.Code)
	got := ts.attendance.lastWarning
	assert.Equal(t, []string{"John Doe", "Jane Smith"}, got.Employees)
	assert.Equal(t, "jane@example.com", got.Recipients["Jane Smith"])
	assert.True(t, got.Send)

	w = ts.do(multipartRequest(t, "/api/v1/reports/attendance/warnings", token, "clock.xlsx", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(multipartRequest(t, "/api/v1/reports/attendance/warnings", token, "clock.xlsx", map[string][]string{
		"employees": {"John Doe"},
		"send":      {"maybe"},
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.attendance.err = attendance.ErrEmailNotConfigured
	w = ts.do(multipartRequest(t, "/api/v1/reports/attendance/warnings", token, "clock.xlsx", map[string][]string{
		"employees[]": {"John Doe"},
	}))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ========================================
// UPLOAD LOG
// ========================================

func TestUploads(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return ts.do(req)
	}

	w := get("/api/v1/uploads?report_type=coe&limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.uploads.lastFilter.ReportType)
	assert.Equal(t, report.TypeCOE, *ts.uploads.lastFilter.ReportType)
	assert.Equal(t, 5, ts.uploads.lastFilter.Limit)

	assert.Equal(t, http.StatusBadRequest, get("/api/v1/uploads?limit=ten").Code)

	w = get("/api/v1/uploads/u1/file")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "raw", w.Body.String())
	assert.Equal(t, "attachment; filename=january.xlsx", w.Header().Get("Content-Disposition"))

	assert.Equal(t, http.StatusNotFound, get("/api/v1/uploads/missing/file").Code)

	ts.uploads.disabled = true
	assert.Equal(t, http.StatusServiceUnavailable, get("/api/v1/uploads").Code)
}
