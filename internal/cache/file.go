package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
)

// File is a Store that keeps one JSON file per key under a directory, so
// entries survive between short-lived processes such as a status-bar command.
// Write failures are ignored: the cache is best-effort.
type File[V any] struct {
	dir   string
	name  string
	ttl   time.Duration
	clock clock.Clock
}

type fileEntry[V any] struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
	Value     V         `json:"value"`
}

// DefaultDir returns ~/.cache/ramadan-status.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine cache directory: %w", err)
	}
	return filepath.Join(dir, "ramadan-status"), nil
}

// NewFile creates a file store in dir (DefaultDir when empty). name prefixes
// every file so several stores can share one directory.
func NewFile[V any](dir, name string, ttl time.Duration, opts ...Option) (*File[V], error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := options{clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &File[V]{dir: dir, name: name, ttl: ttl, clock: o.clock}, nil
}

// path hashes the key so arbitrary strings map to safe file names.
func (f *File[V]) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, fmt.Sprintf("%s_%x.json", f.name, h[:8]))
}

// Get returns the stored value if it exists, belongs to key and is fresh.
// Stale files are removed.
func (f *File[V]) Get(key string) (V, bool) {
	var zero V
	path := f.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return zero, false
	}
	var e fileEntry[V]
	if err := json.Unmarshal(data, &e); err != nil || e.Key != key {
		return zero, false
	}
	if !f.clock.Now().Before(e.ExpiresAt) {
		_ = os.Remove(path)
		return zero, false
	}
	return e.Value, true
}

// Has reports whether a fresh entry exists for key.
func (f *File[V]) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Set writes value under key.
func (f *File[V]) Set(key string, value V) {
	data, err := json.Marshal(fileEntry[V]{Key: key, ExpiresAt: f.clock.Now().Add(f.ttl), Value: value})
	if err != nil {
		return
	}
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, f.path(key))
}
