package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"
)

// MaxImageBytes is the largest accepted image upload (5 MiB).
const MaxImageBytes = 5 << 20

// ErrUnsupportedType is returned for uploads that are not JPEG, PNG, or GIF.
var ErrUnsupportedType = errors.New("invalid file type, only JPEG, PNG, and GIF are allowed")

// ErrFileTooLarge is returned for uploads exceeding MaxImageBytes.
var ErrFileTooLarge = errors.New("uploaded file too large")

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage wraps an ObjectStorage backend with the image upload rules.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// SaveImage validates and stores a single uploaded image, returning the
// generated object key. Nothing is written when validation fails: the
// content type must be an allowed image type and the payload must not
// exceed MaxImageBytes.
func (s *Storage) SaveImage(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	if _, ok := allowedImageTypes[contentType]; !ok {
		return "", ErrUnsupportedType
	}

	limited := io.LimitReader(r, MaxImageBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", ErrFileTooLarge
	}

	key := ObjectKey(originalName)
	if err := s.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Open returns a reader for a stored object.
func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// ObjectKey derives a unique storage key for an upload: epoch millis,
// a random component, and the sanitized client-supplied filename. The
// prefix guarantees uniqueness; sanitization only keeps the key safe to
// use as a path segment.
func ObjectKey(originalName string) string {
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000), SanitizeFilename(originalName))
}

// SanitizeFilename strips path separators, parent-directory sequences,
// and control characters from a client-supplied filename.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "..", "")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
