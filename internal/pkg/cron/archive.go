package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
)

type ArchiveJobs struct {
	uploadService report.UploadService
}

func NewArchiveJobs(uploadService report.UploadService) *ArchiveJobs {
	return &ArchiveJobs{uploadService: uploadService}
}

func (j *ArchiveJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) error {
	return scheduler.AddJob("purge_expired_uploads", interval, j.PurgeExpiredUploads)
}

// PurgeExpiredUploads removes archived spreadsheets past the retention window
func (j *ArchiveJobs) PurgeExpiredUploads(ctx context.Context) error {
	removed, err := j.uploadService.PurgeArchive(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Purged expired uploads", "removed", removed)
	}
	return nil
}
