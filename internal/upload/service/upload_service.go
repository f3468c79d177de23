package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/common/resilience"
	"github.com/AlibekovAA/blog-backend/internal/observability/metrics"
	"github.com/AlibekovAA/blog-backend/internal/upload/storage"
)

const (
	PublicPrefix = "/uploads/"

	sniffLen = 512
	maxName  = 255
)

type UploadService struct {
	store    storage.Storage
	maxBytes int64
	log      *logger.Logger
}

func NewUploadService(store storage.Storage, maxBytes int64, log *logger.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = constants.DefaultMaxUploadSize
	}
	return &UploadService{store: store, maxBytes: maxBytes, log: log}
}

func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// SanitizeName reduces a client supplied file name to a safe base name.
// Characters outside [A-Za-z0-9._-] become underscores.
func SanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	clean := b.String()
	if clean == "" || strings.HasPrefix(clean, ".") || len(clean) > maxName {
		return "", ErrInvalidFileName
	}
	return clean, nil
}

// Save stores an image under its sanitized name and returns its public URL.
// The content type is sniffed from the data, never taken from the client.
func (s *UploadService) Save(ctx context.Context, filename string, size int64, r io.ReadSeeker) (string, error) {
	driver := s.store.Driver()

	name, err := SanitizeName(filename)
	if err != nil {
		s.reject(ctx, filename, "invalid_name")
		return "", err
	}

	if size > s.maxBytes {
		s.reject(ctx, name, "too_large")
		return "", ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", ErrStorage.WithCause(err)
	}
	if n == 0 {
		s.reject(ctx, name, "empty")
		return "", ErrFileRequired
	}

	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		s.reject(ctx, name, "unsupported_media")
		return "", ErrUnsupportedMedia
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", ErrStorage.WithCause(err)
	}

	if err := s.store.Save(ctx, name, contentType, size, r); err != nil {
		metrics.UploadsTotal.WithLabelValues(driver, "error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"file":   name,
			"driver": driver,
			"action": "upload_failed",
		}).Errorf("upload failed: %v", err)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return "", err
		}
		return "", ErrStorage.WithCause(err)
	}

	metrics.UploadsTotal.WithLabelValues(driver, "success").Inc()
	metrics.UploadBytesTotal.WithLabelValues(driver).Add(float64(size))

	s.log.WithFields(ctx, logger.Fields{
		"file":         name,
		"driver":       driver,
		"content_type": contentType,
		"size":         size,
		"action":       "upload_success",
	}).Info("image uploaded")

	return PublicPrefix + name, nil
}

// Open returns a stored file. Names that do not survive sanitizing unchanged
// are reported as missing.
func (s *UploadService) Open(ctx context.Context, name string) (storage.Object, error) {
	clean, err := SanitizeName(name)
	if err != nil || clean != name {
		return storage.Object{}, ErrFileNotFound
	}

	obj, err := s.store.Open(ctx, clean)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return storage.Object{}, ErrFileNotFound
		}
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return storage.Object{}, err
		}
		return storage.Object{}, ErrStorage.WithCause(err)
	}
	return obj, nil
}

func (s *UploadService) reject(ctx context.Context, name, reason string) {
	metrics.UploadsTotal.WithLabelValues(s.store.Driver(), "rejected").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"file":   name,
		"reason": reason,
		"action": "upload_rejected",
	}).Debug("upload rejected")
}
