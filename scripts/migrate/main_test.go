package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfid-logbook/internal/repository"
)

func newStores(t *testing.T) (*repository.FileStore, *repository.FileStore) {
	t.Helper()
	from, err := repository.NewFileStore(t.TempDir())
	require.NoError(t, err)
	to, err := repository.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return from, to
}

func TestMigratorRun(t *testing.T) {
	ctx := context.Background()
	from, to := newStores(t)

	require.NoError(t, from.Put(ctx, repository.NicknamesKey, []byte(`{"04:A1":"Budi"}`)))
	require.NoError(t, from.Put(ctx, repository.AttendanceKey, []byte(`["04:A1,2026-03-02 08:00:00"]`)))
	require.NoError(t, to.Put(ctx, repository.AttendanceKey, []byte(`[]`)))

	copied, err := NewMigrator(from, to, false).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, copied)

	data, err := to.Get(ctx, repository.NicknamesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"04:A1":"Budi"}`, string(data))

	// existing keys survive without -force
	data, err = to.Get(ctx, repository.AttendanceKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	copied, err = NewMigrator(from, to, true).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, copied)

	data, err = to.Get(ctx, repository.AttendanceKey)
	require.NoError(t, err)
	assert.Equal(t, `["04:A1,2026-03-02 08:00:00"]`, string(data))
}

func TestMigratorRejectsCorruptSource(t *testing.T) {
	ctx := context.Background()
	from, to := newStores(t)

	require.NoError(t, from.Put(ctx, repository.BorrowLogsKey, []byte(`{not json`)))

	_, err := NewMigrator(from, to, false).Run(ctx)
	require.Error(t, err)

	_, err = to.Get(ctx, repository.BorrowLogsKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
