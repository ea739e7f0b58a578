// Package storage stores published asset files. Keys follow the pipeline
// layout:
//
//	assets/{asset_id}/v{version}/{filename}
//	thumbnails/{asset_id}_v{version}.jpg
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"asset-server/internal/config"
)

type Store interface {
	Type() string
	// Save writes the object under key and returns the stored size.
	Save(ctx context.Context, key string, r io.Reader, size int64) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every object whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// ListDirs returns the direct child directory names under prefix.
	ListDirs(ctx context.Context, prefix string) ([]string, error)
}

type Factory func(cfg config.StoreConfig) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.StoreConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
	return factory(cfg)
}

func AssetPrefix(assetID string) string {
	return path.Join("assets", assetID)
}

func VersionPrefix(assetID string, version int) string {
	return path.Join("assets", assetID, fmt.Sprintf("v%d", version))
}

func FileKey(assetID string, version int, filename string) string {
	return path.Join(VersionPrefix(assetID, version), filename)
}

func ThumbKey(assetID string, version int) string {
	return fmt.Sprintf("thumbnails/%s_v%d.jpg", assetID, version)
}

func ThumbPrefix(assetID string) string {
	return fmt.Sprintf("thumbnails/%s_", assetID)
}

// ValidKey rejects keys that could escape the storage root.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	clean := path.Clean(key)
	return clean == key && !strings.HasPrefix(clean, "..")
}
