package coe

import (
	"context"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
)

type COEService interface {
	// GenerateExpiryReport splits records into received-in-18-months and expiring-in-6-months
	GenerateExpiryReport(ctx context.Context, req ReportRequest) (ExpiryReport, error)

	// ExportExpiryReport renders the expiry report as a workbook
	ExportExpiryReport(ctx context.Context, req ReportRequest) (report.ExportFile, error)

	// GenerateSalesReport pivots current-month sales per consultant and COE type
	GenerateSalesReport(ctx context.Context, req ReportRequest) (SalesReport, error)

	// ExportSalesReport renders the sales pivot and its raw rows as a workbook
	ExportSalesReport(ctx context.Context, req ReportRequest) (report.ExportFile, error)
}
