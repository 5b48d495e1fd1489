package attendance

import (
	"context"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
)

// AttendanceService builds attendance compliance reports from time-clock exports
type AttendanceService interface {
	// GenerateReport computes daily summaries, rollups, KPIs and risk candidates
	GenerateReport(ctx context.Context, req ReportRequest) (Report, error)

	// ExportReport renders the report as a downloadable workbook
	ExportReport(ctx context.Context, req ReportRequest) (report.ExportFile, error)

	// GenerateWarnings drafts (and optionally sends) irregularity notices
	GenerateWarnings(ctx context.Context, req WarningRequest) (WarningResponse, error)
}
