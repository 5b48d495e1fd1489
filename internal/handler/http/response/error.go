package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/attendance"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/auth"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/coe"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/lead"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token revoked")

	// Spreadsheet errors
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, spreadsheet.ErrEmptyWorkbook):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, report.ErrFileTooLarge):
		RequestEntityTooLarge(w, err.Error())

	// Report domain errors
	case errors.Is(err, attendance.ErrMissingColumn):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, coe.ErrColumnOutOfRange):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, lead.ErrNoNamedColumns):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, attendance.ErrEmailNotConfigured):
		ServiceUnavailable(w, "Email delivery is not configured")

	// Upload log errors
	case errors.Is(err, report.ErrUploadNotFound):
		NotFound(w, "Upload not found")
	case errors.Is(err, report.ErrUploadLogDisabled):
		ServiceUnavailable(w, "Upload log is not enabled")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
