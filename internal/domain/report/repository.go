package report

import "context"

// UploadRepository persists the upload log.
type UploadRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, upload Upload) (Upload, error)
	GetByID(ctx context.Context, id string) (Upload, error)
	List(ctx context.Context, filter UploadFilter) ([]Upload, error)
}
