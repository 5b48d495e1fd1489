package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRepository(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	repo := postgresql.NewUploadRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	// Running it twice must be harmless
	require.NoError(t, repo.EnsureSchema(ctx))
	truncateUploads(t, db)

	base := time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)
	fixtures := []report.Upload{
		{ReportType: report.TypeAttendance, Filename: "january.xlsx", StoredPath: "uploads/attendance/a.xlsx", SizeBytes: 1024, RowCount: 40, DroppedRows: 2, CreatedAt: base},
		{ReportType: report.TypeCOE, Filename: "coe.xlsx", StoredPath: "uploads/coe/b.xlsx", SizeBytes: 2048, RowCount: 10, CreatedAt: base.Add(time.Hour)},
		{ReportType: report.TypeAttendance, Filename: "february.xls", StoredPath: "uploads/attendance/c.xls", SizeBytes: 512, RowCount: 12, CreatedAt: base.Add(2 * time.Hour)},
	}

	var created []report.Upload
	for _, f := range fixtures {
		u, err := repo.Create(ctx, f)
		require.NoError(t, err)
		require.NotEmpty(t, u.ID)
		created = append(created, u)
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "january.xlsx", got.Filename)
		assert.Equal(t, report.TypeAttendance, got.ReportType)
		assert.Equal(t, 2, got.DroppedRows)
		assert.True(t, got.CreatedAt.Equal(base))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, report.ErrUploadNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		all, err := repo.List(ctx, report.UploadFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "february.xls", all[0].Filename)
		assert.Equal(t, "january.xlsx", all[2].Filename)
	})

	t.Run("list filtered and limited", func(t *testing.T) {
		kind := report.TypeAttendance
		got, err := repo.List(ctx, report.UploadFilter{ReportType: &kind, Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "february.xls", got[0].Filename)
	})
}
