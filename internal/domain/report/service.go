package report

import (
	"context"
	"io"
)

// UploadService archives processed spreadsheets and records them in the upload log.
type UploadService interface {
	// Record archives the raw file and writes a log entry
	Record(ctx context.Context, req RecordUploadRequest) (UploadResponse, error)

	// List returns recent uploads, newest first
	List(ctx context.Context, filter UploadFilter) ([]UploadResponse, error)

	// Open returns the archived file of an upload
	Open(ctx context.Context, id string) (UploadResponse, io.ReadCloser, error)

	// PurgeArchive removes archived files older than the retention window
	PurgeArchive(ctx context.Context) (int, error)
}
