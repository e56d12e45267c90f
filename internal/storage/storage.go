// Package storage writes media objects to owned storage and reports their public URL.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aigcpilot/harvester/internal/config"
)

// ObjectStore uploads an object under key and returns the URL it is served from.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) (string, error)
	PublicBase() string
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageLocal:
		return NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublicBase)
	case config.StorageS3, "":
		return NewS3Store(ctx, S3Options{
			Endpoint:   cfg.R2Endpoint,
			AccessKey:  cfg.R2AccessKey,
			SecretKey:  cfg.R2SecretKey,
			Bucket:     cfg.R2Bucket,
			Region:     cfg.R2Region,
			PublicBase: cfg.StoragePublicBase,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// PublicURL joins a public base and an object key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// LocalStore writes objects below a directory served by the web front end.
type LocalStore struct {
	basePath   string
	publicBase string
	mu         sync.Mutex
}

func NewLocalStore(basePath, publicBase string) (*LocalStore, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStore{
		basePath:   basePath,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// PutObject writes data to basePath/key. The content type is implied by the key's extension.
func (s *LocalStore) PutObject(ctx context.Context, key, _ string, data []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	path := filepath.Join(s.basePath, filepath.FromSlash(clean))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	return PublicURL(s.publicBase, strings.TrimPrefix(clean, "/")), nil
}

func (s *LocalStore) PublicBase() string { return s.publicBase }
