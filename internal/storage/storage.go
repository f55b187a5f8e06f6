package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/greenflash/greenflash/internal/config"
)

var ErrNotExist = errors.New("file does not exist")

// Storage is a flat key/value blob store. Keys are slash separated paths.
type Storage interface {
	// Save stores a file at the given path, replacing any previous content
	Save(path string, file io.Reader) error

	// Delete removes a file; ErrNotExist is returned when nothing was there
	Delete(path string) error

	// DeletePrefix removes every file below prefix
	DeletePrefix(prefix string) error

	// URL returns the URL for accessing the file
	URL(path string) string
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageLocal:
		slog.Info("initializing local storage", "path", c.MediaPath)
		return NewLocalStorage(c.MediaPath, c.MediaURL)
	case cfg.StorageS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			PresignExpiry: c.S3PresignExpiry,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
