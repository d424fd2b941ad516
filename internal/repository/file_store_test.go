package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Get(ctx, AttendanceKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, AttendanceKey, []byte(`["a"]`)))
	require.NoError(t, s.Put(ctx, AttendanceKey, []byte(`["b"]`)))

	got, err := s.Get(ctx, AttendanceKey)
	require.NoError(t, err)
	assert.Equal(t, `["b"]`, string(got))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1, "temp files must be cleaned up")
	assert.Equal(t, AttendanceKey+".json", files[0].Name())
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Put(context.Background(), "../escape", []byte("x")))
	_, err = s.Get(context.Background(), "a/b")
	assert.Error(t, err)
}
