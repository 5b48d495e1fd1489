package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/storage"
	"github.com/google/uuid"
)

const archivePrefix = "uploads"

type UploadServiceImpl struct {
	storage       storage.FileStorage
	repo          report.UploadRepository
	retentionDays int
	now           func() time.Time
}

// NewUploadService archives uploads into storage. repo may be nil, in which
// case files are still archived but no log entry is written.
func NewUploadService(storage storage.FileStorage, repo report.UploadRepository, retentionDays int, now func() time.Time) report.UploadService {
	if now == nil {
		now = time.Now
	}
	return &UploadServiceImpl{
		storage:       storage,
		repo:          repo,
		retentionDays: retentionDays,
		now:           now,
	}
}

// Record implements report.UploadService.
func (s *UploadServiceImpl) Record(ctx context.Context, req report.RecordUploadRequest) (report.UploadResponse, error) {
	if !req.ReportType.Valid() {
		return report.UploadResponse{}, fmt.Errorf("invalid report type %q", req.ReportType)
	}

	now := s.now().UTC()
	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(req.Filename))
	key := path.Join(archivePrefix, string(req.ReportType), now.Format("2006-01-02"), id+ext)

	storedPath, err := s.storage.Upload(ctx, bytes.NewReader(req.Content), key)
	if err != nil {
		return report.UploadResponse{}, fmt.Errorf("failed to archive upload: %w", err)
	}

	upload := report.Upload{
		ID:          id,
		ReportType:  req.ReportType,
		Filename:    filepath.Base(req.Filename),
		StoredPath:  storedPath,
		SizeBytes:   int64(len(req.Content)),
		RowCount:    req.RowCount,
		DroppedRows: req.DroppedRows,
		CreatedAt:   now,
	}

	if s.repo == nil {
		return report.NewUploadResponse(upload), nil
	}

	upload, err = s.repo.Create(ctx, upload)
	if err != nil {
		// Keep storage and log consistent
		if delErr := s.storage.Delete(ctx, storedPath); delErr != nil {
			slog.Warn("failed to remove orphaned upload", "path", storedPath, "error", delErr)
		}
		return report.UploadResponse{}, fmt.Errorf("failed to record upload: %w", err)
	}

	return report.NewUploadResponse(upload), nil
}

// List implements report.UploadService.
func (s *UploadServiceImpl) List(ctx context.Context, filter report.UploadFilter) ([]report.UploadResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, report.ErrUploadLogDisabled
	}

	uploads, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]report.UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		resp = append(resp, report.NewUploadResponse(u))
	}
	return resp, nil
}

// Open implements report.UploadService.
func (s *UploadServiceImpl) Open(ctx context.Context, id string) (report.UploadResponse, io.ReadCloser, error) {
	if s.repo == nil {
		return report.UploadResponse{}, nil, report.ErrUploadLogDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return report.UploadResponse{}, nil, report.ErrUploadNotFound
	}

	upload, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return report.UploadResponse{}, nil, err
	}

	rc, err := s.storage.Download(ctx, upload.StoredPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Archive already purged
			return report.UploadResponse{}, nil, report.ErrUploadNotFound
		}
		return report.UploadResponse{}, nil, err
	}

	return report.NewUploadResponse(upload), rc, nil
}

// PurgeArchive implements report.UploadService.
func (s *UploadServiceImpl) PurgeArchive(ctx context.Context) (int, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	removed, err := s.storage.PurgeOlderThan(ctx, archivePrefix, cutoff)
	if err != nil {
		return removed, fmt.Errorf("failed to purge upload archive: %w", err)
	}
	return removed, nil
}
