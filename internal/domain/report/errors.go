package report

import "errors"

var (
	ErrFileRequired           = errors.New("spreadsheet file is required")
	ErrUnsupportedFile        = errors.New("only .xlsx and .xls files are supported")
	ErrFileTooLarge           = errors.New("file exceeds the upload limit")
	ErrUploadNotFound         = errors.New("upload not found")
	ErrUploadLogDisabled      = errors.New("upload log is not enabled")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
