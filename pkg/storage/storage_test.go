package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/pkg/storage"
)

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "")

	ok, err := d.Exists(ctx, "exports/a.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.Get(ctx, "exports/a.json")
	assert.ErrorIs(t, err, storage.ErrNotExist)

	require.NoError(t, d.Put(ctx, "exports/a.json", []byte(`{"a":1}`)))
	got, err := d.Get(ctx, "exports/a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	files, err := d.Files(ctx, "exports")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/a.json"}, files)

	require.NoError(t, d.Delete(ctx, "exports/a.json"))
	require.NoError(t, d.Delete(ctx, "exports/a.json"))
}

func TestLocalDiskStaysInRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := storage.NewLocalDisk(root, "")

	require.NoError(t, d.Put(ctx, "../../escape.json", []byte("x")))
	ok, err := d.Exists(ctx, "escape.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenUnknownDisk(t *testing.T) {
	_, err := storage.Open(context.Background(), "ftp")
	assert.Error(t, err)
}
