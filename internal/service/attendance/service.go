package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/attendance"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/email"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/spreadsheet"
)

type AttendanceServiceImpl struct {
	calculator    *MetricsCalculator
	thresholds    attendance.Thresholds
	columns       attendance.ColumnMapping
	officeHours   string
	uploadService report.UploadService
	emailService  email.EmailService
	now           func() time.Time
}

type Options struct {
	Thresholds    attendance.Thresholds
	Columns       attendance.ColumnMapping
	OfficeHours   string
	UploadService report.UploadService
	EmailService  email.EmailService
	Now           func() time.Time
}

// NewAttendanceService builds the attendance report service. A zero Columns
// mapping falls back to header detection. UploadService may be nil.
func NewAttendanceService(opts Options) attendance.AttendanceService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AttendanceServiceImpl{
		calculator:    NewMetricsCalculator(),
		thresholds:    opts.Thresholds,
		columns:       opts.Columns,
		officeHours:   opts.OfficeHours,
		uploadService: opts.UploadService,
		emailService:  opts.EmailService,
		now:           opts.Now,
	}
}

// build parses the upload and runs the calculator with the effective thresholds.
func (s *AttendanceServiceImpl) build(ctx context.Context, file report.SpreadsheetFile, overrides *attendance.ThresholdOverrides) (attendance.Report, error) {
	th := overrides.Apply(s.thresholds)
	if err := th.Validate(); err != nil {
		return attendance.Report{}, err
	}

	content, err := file.ReadAll()
	if err != nil {
		return attendance.Report{}, err
	}

	grid, err := spreadsheet.Read(content, file.Filename())
	if err != nil {
		return attendance.Report{}, err
	}
	table := spreadsheet.NewTable(grid, 0)

	columns := s.columns
	if columns.IsZero() {
		columns = DetectColumns(table.Headers)
	}

	punches, dropped, err := ExtractPunches(table, columns)
	if err != nil {
		return attendance.Report{}, err
	}
	if dropped > 0 {
		slog.Info("dropped unreadable attendance rows", "filename", file.Filename(), "dropped", dropped, "total", table.Len())
	}

	daily := s.calculator.Calculate(punches, th)

	if s.uploadService != nil {
		_, err := s.uploadService.Record(ctx, report.RecordUploadRequest{
			ReportType:  report.TypeAttendance,
			Filename:    file.Filename(),
			Content:     content,
			RowCount:    table.Len(),
			DroppedRows: dropped,
		})
		if err != nil {
			slog.Warn("failed to record attendance upload", "filename", file.Filename(), "error", err)
		}
	}

	return attendance.Report{
		GeneratedAt:    s.now().Format(time.RFC3339),
		Filename:       file.Filename(),
		Thresholds:     th,
		Columns:        columns,
		TotalRows:      table.Len(),
		ValidRows:      len(punches),
		DroppedRows:    dropped,
		Metrics:        s.calculator.Metrics(daily),
		Daily:          daily,
		Employees:      s.calculator.Rollup(daily),
		RiskCandidates: s.calculator.RiskCandidates(daily),
	}, nil
}

// GenerateReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GenerateReport(ctx context.Context, req attendance.ReportRequest) (attendance.Report, error) {
	if err := req.Validate(); err != nil {
		return attendance.Report{}, err
	}
	return s.build(ctx, req.SpreadsheetFile, req.Thresholds)
}

// ExportReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportReport(ctx context.Context, req attendance.ReportRequest) (report.ExportFile, error) {
	rep, err := s.GenerateReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	wb, err := spreadsheet.NewWorkbook()
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to create workbook: %w", err)
	}
	defer wb.Close()

	if err := wb.AddSheet("Daily Summary", dailyHeaders, dailyRows(rep.Daily)); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to write daily sheet: %w", err)
	}
	if err := wb.AddSheet("Employee Summary", rollupHeaders, rollupRows(rep.Employees)); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to write employee sheet: %w", err)
	}
	if err := wb.AddSheet("Risk Candidates", riskHeaders, riskRows(rep.RiskCandidates)); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to write risk sheet: %w", err)
	}

	content, err := wb.Bytes()
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to serialise workbook: %w", err)
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("Attendance_Report_%s.xlsx", s.now().Format("2006-01-02")),
		ContentType: spreadsheet.ContentTypeXLSX,
		Content:     content,
	}, nil
}

// GenerateWarnings implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GenerateWarnings(ctx context.Context, req attendance.WarningRequest) (attendance.WarningResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.WarningResponse{}, err
	}
	if req.Send && (s.emailService == nil || !s.emailService.Enabled()) {
		return attendance.WarningResponse{}, attendance.ErrEmailNotConfigured
	}

	rep, err := s.build(ctx, req.SpreadsheetFile, req.Thresholds)
	if err != nil {
		return attendance.WarningResponse{}, err
	}

	candidates := make(map[string]attendance.RiskCandidate, len(rep.RiskCandidates))
	for _, rc := range rep.RiskCandidates {
		candidates[rc.Employee] = rc
	}

	resp := attendance.WarningResponse{Drafts: []attendance.WarningDraft{}}
	seen := make(map[string]bool)
	for _, name := range req.Employees {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		rc, ok := candidates[name]
		if !ok {
			// Selected employees without violations get no letter.
			continue
		}

		draft, err := s.draftWarning(rc)
		if err != nil {
			return attendance.WarningResponse{}, err
		}
		draft.Recipient = strings.TrimSpace(req.Recipients[name])

		if req.Send {
			if err := s.emailService.SendHTML(draft.Recipient, draft.Subject, draft.HTMLBody); err != nil {
				slog.Error("failed to send attendance warning", "employee", name, "error", err)
				draft.Error = err.Error()
				resp.Failed++
			} else {
				draft.Sent = true
				resp.Sent++
			}
		}
		resp.Drafts = append(resp.Drafts, draft)
	}

	return resp, nil
}

func (s *AttendanceServiceImpl) draftWarning(rc attendance.RiskCandidate) (attendance.WarningDraft, error) {
	data := email.AttendanceWarningData{
		EmployeeName: rc.Employee,
		OfficeHours:  s.officeHours,
	}
	for _, d := range rc.Days {
		data.Violations = append(data.Violations, email.AttendanceWarningRow{
			Date:         d.Date,
			FirstIn:      d.FirstCheckIn.String(),
			LastOut:      d.LastCheckOut.String(),
			HoursPresent: fmt.Sprintf("%.2f", d.PresenceHours()),
			Note:         d.Note,
			IsLate:       d.IsLate,
			IsEarlyExit:  d.IsEarlyExit,
		})
	}

	body, err := s.emailService.RenderAttendanceWarning(data)
	if err != nil {
		return attendance.WarningDraft{}, fmt.Errorf("failed to render warning for %s: %w", rc.Employee, err)
	}

	return attendance.WarningDraft{
		Employee:   rc.Employee,
		Subject:    "Notice of Attendance Irregularity - " + rc.Employee,
		HTMLBody:   body,
		Violations: rc.Days,
	}, nil
}

// ========================================
// WORKBOOK SHEETS
// ========================================

var (
	dailyHeaders = []string{
		"Employee", "Date", "First In", "Last Out", "Presence (min)", "Break (min)", "Lunch (min)",
		"Net Work (min)", "Net Work (h)", "Punches", "Late", "Short Day", "Excess Lunch", "Suspicious",
		"Early Exit", "Compliant", "Note",
	}
	rollupHeaders = []string{
		"Employee", "Days Present", "Avg First In", "Avg Net Work (h)", "Total Net Work (min)",
		"Late Days", "Short Days", "Excess Lunch Days", "Early Exit Days", "Suspicious Days",
	}
	riskHeaders = []string{"Employee", "Violations", "Last Issue"}
)

func dailyRows(daily []attendance.DailySummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, []interface{}{
			d.Employee, d.Date, d.FirstCheckIn.String(), d.LastCheckOut.String(),
			d.TotalPresenceMinutes, d.BreakMinutes, d.LunchMinutes, d.NetWorkMinutes,
			roundHours(d.NetWorkHours()), d.PunchCount,
			yesNo(d.IsLate), yesNo(d.IsShortDay), yesNo(d.ExcessLunch), yesNo(d.Suspicious),
			yesNo(d.IsEarlyExit), yesNo(d.IsCompliant), d.Note,
		})
	}
	return rows
}

func rollupRows(rollups []attendance.EmployeeRollup) [][]interface{} {
	rows := make([][]interface{}, 0, len(rollups))
	for _, r := range rollups {
		rows = append(rows, []interface{}{
			r.Employee, r.DaysPresent, r.AvgFirstCheckIn.String(), r.AvgNetWorkHours,
			r.TotalNetWorkMinutes, r.LateDays, r.ShortDays, r.ExcessLunchDays, r.EarlyExitDays,
			r.SuspiciousDays,
		})
	}
	return rows
}

func riskRows(candidates []attendance.RiskCandidate) [][]interface{} {
	rows := make([][]interface{}, 0, len(candidates))
	for _, rc := range candidates {
		rows = append(rows, []interface{}{rc.Employee, rc.Violations, rc.LastViolation})
	}
	return rows
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
