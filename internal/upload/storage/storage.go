// Package storage holds the blob backends used for uploaded images.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

const (
	DriverDisk  = "disk"
	DriverMinio = "minio"
)

var ErrObjectNotFound = errors.New("object not found")

type Object struct {
	Body        io.ReadSeekCloser
	Size        int64
	ModTime     time.Time
	ContentType string
}

type Storage interface {
	Driver() string
	Save(ctx context.Context, name, contentType string, size int64, r io.Reader) error
	Open(ctx context.Context, name string) (Object, error)
	Ping(ctx context.Context) error
}
