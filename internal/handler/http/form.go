package http

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/handler/http/response"
)

// multipartOverhead leaves room for form fields next to a maximum-size file
const multipartOverhead = 1 << 20

// parseSpreadsheetForm reads the "file" field of a multipart upload. A missing
// file is not an error here; the request DTO reports it during validation.
func parseSpreadsheetForm(w http.ResponseWriter, r *http.Request) (report.SpreadsheetFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, report.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(report.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return report.SpreadsheetFile{}, report.ErrFileTooLarge
		}
		return report.SpreadsheetFile{}, errBadForm
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return report.SpreadsheetFile{}, nil
		}
		return report.SpreadsheetFile{}, errBadForm
	}

	return report.SpreadsheetFile{File: file, FileHeader: fileHeader}, nil
}

var errBadForm = errors.New("failed to parse form data")

// handleFormError answers a parseSpreadsheetForm failure
func handleFormError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadForm) {
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}
	response.HandleError(w, err)
}

func closeSpreadsheet(f report.SpreadsheetFile) {
	if f.File != nil {
		f.File.Close()
	}
}
