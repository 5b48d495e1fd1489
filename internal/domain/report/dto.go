package report

import (
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/pkg/validator"
)

// MaxUploadSize matches the multipart limit enforced by the handlers.
const MaxUploadSize = 10 << 20

// ========================================
// SPREADSHEET UPLOAD
// ========================================

// SpreadsheetFile is the uploaded workbook shared by every report request.
type SpreadsheetFile struct {
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (f *SpreadsheetFile) Validate() error {
	var errs validator.ValidationErrors

	if f.File == nil || f.FileHeader == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: ErrFileRequired.Error(),
		})
		return errs
	}

	if !validator.IsSpreadsheetFile(f.FileHeader.Filename) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: ErrUnsupportedFile.Error(),
		})
	}

	if f.FileHeader.Size > MaxUploadSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file must not exceed %d MB", MaxUploadSize>>20),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Filename returns the client-side file name.
func (f *SpreadsheetFile) Filename() string {
	if f.FileHeader == nil {
		return ""
	}
	return f.FileHeader.Filename
}

// ReadAll reads the whole upload into memory.
func (f *SpreadsheetFile) ReadAll() ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(f.File, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	return content, nil
}

// ========================================
// GENERATED WORKBOOKS
// ========================================

// ExportFile is a generated download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ========================================
// UPLOAD LOG
// ========================================

type RecordUploadRequest struct {
	ReportType  Type
	Filename    string
	Content     []byte
	RowCount    int
	DroppedRows int
}

type UploadFilter struct {
	ReportType *Type
	Limit      int
}

func (f *UploadFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.ReportType != nil && !f.ReportType.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "report_type",
			Message: "report_type must be one of lead, coe, attendance",
		})
	}

	if f.Limit < 0 || f.Limit > 200 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 200",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UploadResponse struct {
	ID          string `json:"id"`
	ReportType  Type   `json:"report_type"`
	Filename    string `json:"filename"`
	StoredPath  string `json:"stored_path"`
	SizeBytes   int64  `json:"size_bytes"`
	RowCount    int    `json:"row_count"`
	DroppedRows int    `json:"dropped_rows"`
	CreatedAt   string `json:"created_at"`
}

func NewUploadResponse(u Upload) UploadResponse {
	return UploadResponse{
		ID:          u.ID,
		ReportType:  u.ReportType,
		Filename:    u.Filename,
		StoredPath:  u.StoredPath,
		SizeBytes:   u.SizeBytes,
		RowCount:    u.RowCount,
		DroppedRows: u.DroppedRows,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
