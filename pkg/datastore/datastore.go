// Package datastore provides access to object stores through hierarchical,
// path-like keys. Stores are addressed by URL; the included backends cover
// redis (single node or cluster), s3 and the local filesystem.
package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Size    int64
	ModTime time.Time
}

// Store is the interface all object store backends implement. Keys are
// path-like strings; what a key maps to on the wire is backend-specific.
//
// Stores hold a lazily created backend handle for their whole lifetime and
// are safe for concurrent use. Operations perform no retries; backend
// failures surface to the caller unchanged.
type Store interface {
	// Kind returns the short backend name used in logs and metrics.
	Kind() string

	// Get reads the object at key, optionally restricted to a byte
	// range. Reading past the end of the object returns whatever the
	// backend defines for an out-of-bounds range, typically a
	// truncated or empty result.
	Get(ctx context.Context, key string, opts ...GetOption) ([]byte, error)

	// Put overwrites the object at key unconditionally.
	Put(ctx context.Context, key string, data []byte) error

	// Append appends data to the object at key, creating it if absent.
	Append(ctx context.Context, key string, data []byte) error

	// Upload stores the contents of a local file under key.
	Upload(ctx context.Context, key, srcPath string) error

	// Stat returns object metadata. Backends without metadata
	// introspection return ErrNotImplemented.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// ListDir lists the objects stored under the key prefix.
	ListDir(ctx context.Context, key string) ([]string, error)

	// Rm removes the object at key, or everything under it with
	// WithRecursive. Removing an absent key is not an error.
	Rm(ctx context.Context, key string, opts ...RmOption) error
}

// Download fetches the object at key and writes it to dstPath. The file
// is written to a temporary name in the destination directory and renamed
// into place so readers never observe a partial download.
func Download(ctx context.Context, s Store, key, dstPath string) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}

	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dstPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
