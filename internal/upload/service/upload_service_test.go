package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/upload/storage"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

type recordingStore struct {
	saved       map[string][]byte
	contentType string
	saveErr     error
}

func (s *recordingStore) Driver() string { return "memory" }

func (s *recordingStore) Save(_ context.Context, name, contentType string, _ int64, r io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.saved[name] = data
	s.contentType = contentType
	return nil
}

func (s *recordingStore) Open(context.Context, string) (storage.Object, error) {
	return storage.Object{}, storage.ErrObjectNotFound
}

func (s *recordingStore) Ping(context.Context) error { return nil }

func newTestUploadService(store *recordingStore, maxBytes int64) *UploadService {
	return NewUploadService(store, maxBytes, logger.NewWriter(io.Discard, "test", "ERROR"))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "cat.png", want: "cat.png"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\me\photo 1.jpg`, want: "photo_1.jpg"},
		{in: "рисунок.png", want: "_______.png"},
		{in: ".hidden.png", wantErr: true},
		{in: "", wantErr: true},
		{in: "..", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeName(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFileName)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSave_StoresSniffedImage(t *testing.T) {
	store := &recordingStore{saved: make(map[string][]byte)}
	svc := newTestUploadService(store, 1<<20)

	url, err := svc.Save(context.Background(), "dir/cat.png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.Equal(t, "/uploads/cat.png", url)
	require.Equal(t, pngHeader, store.saved["cat.png"])
	require.Equal(t, "image/png", store.contentType)
}

func TestSave_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		size     int64
		want     error
	}{
		{name: "not an image", filename: "notes.png", data: []byte("plain text pretending"), want: ErrUnsupportedMedia},
		{name: "empty", filename: "empty.png", data: nil, want: ErrFileRequired},
		{name: "too large", filename: "big.png", data: pngHeader, size: 1 << 30, want: ErrFileTooLarge},
		{name: "bad name", filename: ".png", data: pngHeader, want: ErrInvalidFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{saved: make(map[string][]byte)}
			svc := newTestUploadService(store, 1<<20)

			size := tt.size
			if size == 0 {
				size = int64(len(tt.data))
			}

			_, err := svc.Save(context.Background(), tt.filename, size, bytes.NewReader(tt.data))
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, store.saved)
		})
	}
}

func TestSave_StorageFailure(t *testing.T) {
	store := &recordingStore{saved: make(map[string][]byte), saveErr: errors.New("disk full")}
	svc := newTestUploadService(store, 1<<20)

	_, err := svc.Save(context.Background(), "cat.png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
	require.ErrorIs(t, err, ErrStorage)
}

func TestOpen_RejectsUnsanitizedNames(t *testing.T) {
	svc := newTestUploadService(&recordingStore{saved: make(map[string][]byte)}, 0)

	for _, name := range []string{"../secret", ".env", "a b.png"} {
		_, err := svc.Open(context.Background(), name)
		require.ErrorIs(t, err, ErrFileNotFound, name)
	}
}
