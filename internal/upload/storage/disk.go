package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type Disk struct {
	dir string
}

// NewDisk stores files flat inside dir, creating it when missing.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir %q: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Driver() string {
	return DriverDisk
}

// Save writes through a temp file and renames it into place, so readers
// never observe a partial image.
func (d *Disk) Save(_ context.Context, name, _ string, _ int64, r io.Reader) error {
	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close upload: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(d.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

func (d *Disk) Open(_ context.Context, name string) (Object, error) {
	f, err := os.Open(filepath.Join(d.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, ErrObjectNotFound
		}
		return Object{}, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return Object{}, err
	}
	if info.IsDir() {
		f.Close()
		return Object{}, ErrObjectNotFound
	}

	return Object{Body: f, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (d *Disk) Ping(context.Context) error {
	info, err := os.Stat(d.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.dir)
	}
	return nil
}
