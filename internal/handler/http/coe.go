package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/coe"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/handler/http/response"
)

type COEHandler interface {
	// Expiry analysis
	Expiry(w http.ResponseWriter, r *http.Request)
	ExpiryDownload(w http.ResponseWriter, r *http.Request)

	// Current month sales
	Sales(w http.ResponseWriter, r *http.Request)
	SalesDownload(w http.ResponseWriter, r *http.Request)
}

type coeHandlerImpl struct {
	coeService coe.COEService
}

func NewCOEHandler(coeService coe.COEService) COEHandler {
	return &coeHandlerImpl{
		coeService: coeService,
	}
}

// withRequest parses and validates the upload, then hands it to fn
func (h *coeHandlerImpl) withRequest(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, req coe.ReportRequest)) {
	file, err := parseSpreadsheetForm(w, r)
	if err != nil {
		handleFormError(w, err)
		return
	}
	defer closeSpreadsheet(file)

	req := coe.ReportRequest{SpreadsheetFile: file}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	fn(r.Context(), req)
}

// Expiry handles POST /reports/coe/expiry
func (h *coeHandlerImpl) Expiry(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, func(ctx context.Context, req coe.ReportRequest) {
		result, err := h.coeService.GenerateExpiryReport(ctx, req)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, result)
	})
}

// ExpiryDownload handles POST /reports/coe/expiry/download
func (h *coeHandlerImpl) ExpiryDownload(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, func(ctx context.Context, req coe.ReportRequest) {
		writeExport(w)(h.coeService.ExportExpiryReport(ctx, req))
	})
}

// Sales handles POST /reports/coe/sales
func (h *coeHandlerImpl) Sales(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, func(ctx context.Context, req coe.ReportRequest) {
		result, err := h.coeService.GenerateSalesReport(ctx, req)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, result)
	})
}

// SalesDownload handles POST /reports/coe/sales/download
func (h *coeHandlerImpl) SalesDownload(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, func(ctx context.Context, req coe.ReportRequest) {
		writeExport(w)(h.coeService.ExportSalesReport(ctx, req))
	})
}

// writeExport sends a generated workbook or the error that replaced it
func writeExport(w http.ResponseWriter) func(report.ExportFile, error) {
	return func(file report.ExportFile, err error) {
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.File(w, file.Filename, file.ContentType, file.Content)
	}
}
