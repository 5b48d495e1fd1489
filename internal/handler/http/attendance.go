package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/attendance"
	"github.com/cmlabs-hris/report-dashboard/internal/handler/http/response"
)

type AttendanceHandler interface {
	Report(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
	Warnings(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// parseReportRequest reads the upload and the optional "thresholds" JSON field
func parseReportRequest(w http.ResponseWriter, r *http.Request) (attendance.ReportRequest, bool) {
	file, err := parseSpreadsheetForm(w, r)
	if err != nil {
		handleFormError(w, err)
		return attendance.ReportRequest{}, false
	}

	req := attendance.ReportRequest{SpreadsheetFile: file}
	if raw := strings.TrimSpace(r.FormValue("thresholds")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Thresholds); err != nil {
			closeSpreadsheet(file)
			response.BadRequest(w, "Field 'thresholds' must be a JSON object", nil)
			return attendance.ReportRequest{}, false
		}
	}

	if err := req.Validate(); err != nil {
		closeSpreadsheet(file)
		response.HandleError(w, err)
		return attendance.ReportRequest{}, false
	}
	return req, true
}

// Report handles POST /reports/attendance
func (h *attendanceHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}
	defer closeSpreadsheet(req.SpreadsheetFile)

	result, err := h.attendanceService.GenerateReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Download handles POST /reports/attendance/download
func (h *attendanceHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}
	defer closeSpreadsheet(req.SpreadsheetFile)

	writeExport(w)(h.attendanceService.ExportReport(r.Context(), req))
}

// Warnings handles POST /reports/attendance/warnings. Fields: file, employees
// (repeated), recipients (JSON object name -> email), send, thresholds.
func (h *attendanceHandlerImpl) Warnings(w http.ResponseWriter, r *http.Request) {
	base, ok := parseReportRequest(w, r)
	if !ok {
		return
	}
	defer closeSpreadsheet(base.SpreadsheetFile)

	req := attendance.WarningRequest{
		SpreadsheetFile: base.SpreadsheetFile,
		Thresholds:      base.Thresholds,
	}
	req.Employees = append(req.Employees, r.MultipartForm.Value["employees"]...)
	req.Employees = append(req.Employees, r.MultipartForm.Value["employees[]"]...)

	if raw := strings.TrimSpace(r.FormValue("recipients")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Recipients); err != nil {
			response.BadRequest(w, "Field 'recipients' must be a JSON object", nil)
			return
		}
	}

	if raw := r.FormValue("send"); raw != "" {
		send, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "Field 'send' must be a boolean", nil)
			return
		}
		req.Send = send
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GenerateWarnings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Send {
		response.SuccessWithMessage(w, "Warning letters processed", result)
		return
	}
	response.Success(w, result)
}
