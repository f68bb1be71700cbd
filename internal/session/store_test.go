package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStore(path)

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, fs.Save(ctx, "abc", time.Hour))
	got, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Remove(ctx))
	require.NoError(t, fs.Remove(ctx))
	got, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fs := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	fs.now = func() time.Time { return now }

	require.NoError(t, fs.Save(ctx, "abc", time.Minute))
	now = now.Add(time.Hour)
	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryStore_NoTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, "x", 0))
	got, _ := m.Load(ctx)
	assert.Equal(t, "x", got)
}
