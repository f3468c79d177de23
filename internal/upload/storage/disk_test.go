package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisk_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	d, err := NewDisk(dir)
	require.NoError(t, err)
	require.NoError(t, d.Ping(context.Background()))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestDisk_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	payload := []byte("not really a png")
	require.NoError(t, d.Save(ctx, "cat.png", "image/png", int64(len(payload)), bytes.NewReader(payload)))

	obj, err := d.Open(ctx, "cat.png")
	require.NoError(t, err)
	defer obj.Body.Close()

	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.Equal(t, int64(len(payload)), obj.Size)
	require.False(t, obj.ModTime.IsZero())
}

func TestDisk_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, d.Save(ctx, "a.png", "", 3, bytes.NewReader([]byte("old"))))
	require.NoError(t, d.Save(ctx, "a.png", "", 3, bytes.NewReader([]byte("new"))))

	obj, err := d.Open(ctx, "a.png")
	require.NoError(t, err)
	defer obj.Body.Close()

	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestDisk_OpenMissing(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	_, err = d.Open(context.Background(), "missing.png")
	require.True(t, errors.Is(err, ErrObjectNotFound))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestDisk_FailedSaveLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir)
	require.NoError(t, err)

	require.Error(t, d.Save(context.Background(), "broken.png", "", 10, failingReader{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
