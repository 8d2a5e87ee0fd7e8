package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/notekeep/apiserver/config"
)

// DiskClient stores objects as files in a local directory. It is the
// default upload backend; the directory is served at /uploads.
type DiskClient struct {
	dir string
}

// NewDiskClient constructs a disk-backed store rooted at cfg.Dir.
func NewDiskClient(cfg config.UploadConfig) (*DiskClient, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("upload directory is required")
	}
	return &DiskClient{dir: cfg.Dir}, nil
}

// EnsureBucket creates the storage directory if it does not exist.
func (d *DiskClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(d.dir, 0o755)
}

// Put writes an object to the storage directory.
func (d *DiskClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(d.path(key))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	return f.Close()
}

// Get opens a stored object. Missing objects satisfy
// errors.Is(err, fs.ErrNotExist).
func (d *DiskClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(d.path(key))
}

// Delete removes a stored object.
func (d *DiskClient) Delete(ctx context.Context, key string) error {
	return os.Remove(d.path(key))
}

// Bucket returns the storage directory.
func (d *DiskClient) Bucket() string {
	return d.dir
}

// path confines a key to the storage directory regardless of its
// contents.
func (d *DiskClient) path(key string) string {
	return filepath.Join(d.dir, filepath.Base(key))
}
