package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type UploadHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type uploadHandlerImpl struct {
	uploadService report.UploadService
}

func NewUploadHandler(uploadService report.UploadService) UploadHandler {
	return &uploadHandlerImpl{
		uploadService: uploadService,
	}
}

// List handles GET /uploads?report_type=&limit=
func (h *uploadHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter report.UploadFilter

	if rt := r.URL.Query().Get("report_type"); rt != "" {
		reportType := report.Type(rt)
		filter.ReportType = &reportType
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			response.BadRequest(w, "invalid limit parameter", nil)
			return
		}
		filter.Limit = limit
	}

	uploads, err := h.uploadService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, uploads, &response.Meta{
		Limit:      filter.Limit,
		TotalItems: int64(len(uploads)),
	})
}

// Download handles GET /uploads/{id}/file
func (h *uploadHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	upload, rc, err := h.uploadService.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	response.Stream(w, upload.Filename, "", rc)
}
