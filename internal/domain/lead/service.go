package lead

import "context"

type LeadService interface {
	// Preview locates the header row and returns the record count, columns and first rows
	Preview(ctx context.Context, req PreviewRequest) (Preview, error)
}
