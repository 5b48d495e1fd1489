package http

import (
	"net/http"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/lead"
	"github.com/cmlabs-hris/report-dashboard/internal/handler/http/response"
)

type LeadHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
}

type leadHandlerImpl struct {
	leadService lead.LeadService
}

func NewLeadHandler(leadService lead.LeadService) LeadHandler {
	return &leadHandlerImpl{
		leadService: leadService,
	}
}

// Preview handles POST /reports/leads
func (h *leadHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	file, err := parseSpreadsheetForm(w, r)
	if err != nil {
		handleFormError(w, err)
		return
	}
	defer closeSpreadsheet(file)

	req := lead.PreviewRequest{SpreadsheetFile: file}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leadService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
