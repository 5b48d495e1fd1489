package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/report-dashboard/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJob_InvalidInterval(t *testing.T) {
	s := NewScheduler()
	assert.ErrorIs(t, s.AddJob("noop", 0, func(context.Context) error { return nil }), ErrInvalidInterval)
}

func TestSchedulerRunsAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	require.NoError(t, s.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestStopWithoutStart(t *testing.T) {
	NewScheduler().Stop()
}

func TestRunOnce(t *testing.T) {
	s := NewScheduler()
	var order []string
	require.NoError(t, s.AddJob("first", time.Hour, func(context.Context) error {
		order = append(order, "first")
		return errors.New("boom")
	}))
	require.NoError(t, s.AddJob("second", time.Hour, func(context.Context) error {
		order = append(order, "second")
		return nil
	}))

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"first", "second"}, order)
}

type purgeCounter struct {
	report.UploadService
	calls   int
	removed int
	err     error
}

func (p *purgeCounter) PurgeArchive(ctx context.Context) (int, error) {
	p.calls++
	return p.removed, p.err
}

func TestPurgeExpiredUploads(t *testing.T) {
	uploads := &purgeCounter{removed: 3}
	jobs := NewArchiveJobs(uploads)

	require.NoError(t, jobs.PurgeExpiredUploads(context.Background()))
	assert.Equal(t, 1, uploads.calls)

	s := NewScheduler()
	require.NoError(t, jobs.RegisterJobs(s, time.Hour))
	s.RunOnce(context.Background())
	assert.Equal(t, 2, uploads.calls)

	uploads.err = errors.New("disk gone")
	assert.Error(t, jobs.PurgeExpiredUploads(context.Background()))
}
