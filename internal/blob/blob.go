package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pergola/internal/config"
)

// Store reads and writes proposal documents addressed by key.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// ErrNotFound indicates the key has no stored document.
var ErrNotFound = errors.New("blob not found")

// Open builds the blob store selected by the configured driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Blob.Driver {
	case config.BlobDriverFS:
		return newFSStore(cfg.Paths.BlobDir)
	case config.BlobDriverS3:
		return newS3Store(ctx, cfg.Blob)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

// cleanKey rejects keys that could escape the store's namespace.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("blob key required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return key, nil
}
