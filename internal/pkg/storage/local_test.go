package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("payload"), "uploads/coe/2026-01-21/a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "uploads/coe/2026-01-21/a.xlsx", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is not an error")

	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Upload(ctx, strings.NewReader("x"), "../escape.txt")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.Download(ctx, "uploads/../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalStorage_PurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	_, err = s.Upload(ctx, strings.NewReader("old"), "uploads/lead/2025-01-01/old.xlsx")
	require.NoError(t, err)
	_, err = s.Upload(ctx, strings.NewReader("new"), "uploads/lead/2026-01-20/new.xlsx")
	require.NoError(t, err)

	old := time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(base, "uploads/lead/2025-01-01/old.xlsx"), old, old))

	removed, err := s.PurgeOlderThan(ctx, "uploads", time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(base, "uploads/lead/2025-01-01"))
	assert.True(t, os.IsNotExist(err), "emptied directories are removed")

	exists, err := s.Exists(ctx, "uploads/lead/2026-01-20/new.xlsx")
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err = s.PurgeOlderThan(ctx, "missing", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
