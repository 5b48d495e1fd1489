package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultUploadListLimit = 50

type uploadRepositoryImpl struct {
	db *database.DB
}

func NewUploadRepository(db *database.DB) report.UploadRepository {
	return &uploadRepositoryImpl{db: db}
}

// EnsureSchema creates the upload log table and its index when missing
func (r *uploadRepositoryImpl) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS report_uploads (
			id           UUID PRIMARY KEY,
			report_type  VARCHAR(20)  NOT NULL,
			filename     VARCHAR(255) NOT NULL,
			stored_path  TEXT         NOT NULL,
			size_bytes   BIGINT       NOT NULL DEFAULT 0,
			row_count    INTEGER      NOT NULL DEFAULT 0,
			dropped_rows INTEGER      NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_uploads_type_created
			ON report_uploads (report_type, created_at DESC)`,
	}

	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		for _, stmt := range statements {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to ensure upload schema: %w", err)
			}
		}
		return nil
	})
}

// Create inserts an upload log entry
func (r *uploadRepositoryImpl) Create(ctx context.Context, upload report.Upload) (report.Upload, error) {
	q := GetQuerier(ctx, r.db)

	if upload.ID == "" {
		upload.ID = uuid.New().String()
	}

	query := `
		INSERT INTO report_uploads (id, report_type, filename, stored_path, size_bytes, row_count, dropped_rows, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		upload.ID,
		string(upload.ReportType),
		upload.Filename,
		upload.StoredPath,
		upload.SizeBytes,
		upload.RowCount,
		upload.DroppedRows,
		upload.CreatedAt,
	).Scan(&upload.CreatedAt)
	if err != nil {
		return report.Upload{}, fmt.Errorf("failed to create upload: %w", err)
	}

	return upload, nil
}

// GetByID retrieves an upload by ID
func (r *uploadRepositoryImpl) GetByID(ctx context.Context, id string) (report.Upload, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, report_type, filename, stored_path, size_bytes, row_count, dropped_rows, created_at
		FROM report_uploads
		WHERE id = $1
	`

	upload, err := scanUpload(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Upload{}, report.ErrUploadNotFound
		}
		return report.Upload{}, fmt.Errorf("failed to get upload: %w", err)
	}
	return upload, nil
}

// List returns uploads newest first, optionally filtered by report type
func (r *uploadRepositoryImpl) List(ctx context.Context, filter report.UploadFilter) ([]report.Upload, error) {
	q := GetQuerier(ctx, r.db)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultUploadListLimit
	}

	query := `
		SELECT id, report_type, filename, stored_path, size_bytes, row_count, dropped_rows, created_at
		FROM report_uploads
	`
	args := []interface{}{}
	if filter.ReportType != nil {
		args = append(args, string(*filter.ReportType))
		query += fmt.Sprintf(" WHERE report_type = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []report.Upload{}
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, upload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate uploads: %w", err)
	}

	return uploads, nil
}

func scanUpload(row pgx.Row) (report.Upload, error) {
	var u report.Upload
	var reportType string
	err := row.Scan(
		&u.ID,
		&reportType,
		&u.Filename,
		&u.StoredPath,
		&u.SizeBytes,
		&u.RowCount,
		&u.DroppedRows,
		&u.CreatedAt,
	)
	u.ReportType = report.Type(reportType)
	return u, err
}
