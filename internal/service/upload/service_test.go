package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	uploads   map[string]report.Upload
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{uploads: map[string]report.Upload{}}
}

func (r *memoryRepo) EnsureSchema(ctx context.Context) error { return nil }

func (r *memoryRepo) Create(ctx context.Context, u report.Upload) (report.Upload, error) {
	if r.createErr != nil {
		return report.Upload{}, r.createErr
	}
	r.uploads[u.ID] = u
	return u, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (report.Upload, error) {
	u, ok := r.uploads[id]
	if !ok {
		return report.Upload{}, report.ErrUploadNotFound
	}
	return u, nil
}

func (r *memoryRepo) List(ctx context.Context, filter report.UploadFilter) ([]report.Upload, error) {
	var out []report.Upload
	for _, u := range r.uploads {
		if filter.ReportType == nil || u.ReportType == *filter.ReportType {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var fixedNow = time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo report.UploadRepository) (report.UploadService, string) {
	t.Helper()
	base := t.TempDir()
	store, err := storage.NewLocalStorage(base)
	require.NoError(t, err)
	return NewUploadService(store, repo, 90, func() time.Time { return fixedNow }), base
}

func TestRecordAndOpen(t *testing.T) {
	repo := newMemoryRepo()
	svc, base := newTestService(t, repo)
	ctx := context.Background()

	resp, err := svc.Record(ctx, report.RecordUploadRequest{
		ReportType:  report.TypeAttendance,
		Filename:    "January.XLSX",
		Content:     []byte("workbook"),
		RowCount:    12,
		DroppedRows: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, report.TypeAttendance, resp.ReportType)
	assert.Equal(t, "January.XLSX", resp.Filename)
	assert.Equal(t, "uploads/attendance/2026-01-21/"+resp.ID+".xlsx", resp.StoredPath)
	assert.Equal(t, int64(8), resp.SizeBytes)
	assert.Equal(t, 12, resp.RowCount)
	assert.Equal(t, 1, resp.DroppedRows)
	assert.FileExists(t, filepath.Join(base, filepath.FromSlash(resp.StoredPath)))

	got, rc, err := svc.Open(ctx, resp.ID)
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(content))
	assert.Equal(t, resp, got)

	_, _, err = svc.Open(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, report.ErrUploadNotFound)

	list, err := svc.List(ctx, report.UploadFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resp.ID, list[0].ID)
}

func TestRecord_RemovesArchiveWhenLogFails(t *testing.T) {
	repo := newMemoryRepo()
	repo.createErr = errors.New("db down")
	svc, base := newTestService(t, repo)

	_, err := svc.Record(context.Background(), report.RecordUploadRequest{
		ReportType: report.TypeCOE,
		Filename:   "coe.xlsx",
		Content:    []byte("x"),
	})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(base, "uploads", "coe", "2026-01-21"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecord_InvalidType(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRepo())
	_, err := svc.Record(context.Background(), report.RecordUploadRequest{ReportType: "payroll", Filename: "a.xlsx"})
	assert.Error(t, err)
}

func TestWithoutRepository(t *testing.T) {
	svc, base := newTestService(t, nil)
	ctx := context.Background()

	resp, err := svc.Record(ctx, report.RecordUploadRequest{ReportType: report.TypeLead, Filename: "leads.xls", Content: []byte("x")})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(base, filepath.FromSlash(resp.StoredPath)))

	_, err = svc.List(ctx, report.UploadFilter{})
	assert.ErrorIs(t, err, report.ErrUploadLogDisabled)

	_, _, err = svc.Open(ctx, resp.ID)
	assert.ErrorIs(t, err, report.ErrUploadLogDisabled)
}

func TestList_InvalidFilter(t *testing.T) {
	svc, _ := newTestService(t, newMemoryRepo())
	kind := report.Type("payroll")
	_, err := svc.List(context.Background(), report.UploadFilter{ReportType: &kind})
	assert.Error(t, err)
}

func TestPurgeArchive(t *testing.T) {
	svc, base := newTestService(t, newMemoryRepo())
	ctx := context.Background()

	resp, err := svc.Record(ctx, report.RecordUploadRequest{ReportType: report.TypeCOE, Filename: "old.xlsx", Content: []byte("x")})
	require.NoError(t, err)
	full := filepath.Join(base, filepath.FromSlash(resp.StoredPath))

	old := fixedNow.AddDate(0, 0, -91)
	require.NoError(t, os.Chtimes(full, old, old))

	removed, err := svc.PurgeArchive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, full)

	_, _, err = svc.Open(ctx, resp.ID)
	assert.ErrorIs(t, err, report.ErrUploadNotFound)
}
