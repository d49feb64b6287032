// Package filestore implements the datastore.Store interface over the
// local filesystem.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nethajinirmal13/mlrun/internal/metrics"
	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

const storeKind = "file"

// Config holds file store settings.
type Config struct {
	// Root is prepended to every key. Empty means keys are used as
	// filesystem paths directly, relative or absolute.
	Root string
}

// Store is a filesystem backed object store.
type Store struct {
	root string
}

// New creates a file store. When a root is given it must be an existing
// directory or creatable.
func New(cfg Config) (*Store, error) {
	if cfg.Root != "" {
		info, err := os.Stat(cfg.Root)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("stat root %s: %w", cfg.Root, err)
			}
			if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
				return nil, fmt.Errorf("create root %s: %w", cfg.Root, err)
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("root %s is not a directory", cfg.Root)
		}
	}
	return &Store{root: cfg.Root}, nil
}

func (s *Store) fullPath(key string) string {
	if s.root == "" {
		return filepath.FromSlash(key)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

// Kind returns "file".
func (s *Store) Kind() string { return storeKind }

// Get reads the file at key, or the byte range selected by the options.
// Like the key-value stores, a range starting past the end of the file
// reads as empty rather than failing.
func (s *Store) Get(ctx context.Context, key string, opts ...datastore.GetOption) ([]byte, error) {
	o := datastore.NewGetOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := s.readRange(key, o)
	metrics.RecordOperation(storeKind, "get", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	metrics.RecordBytesRead(storeKind, int64(len(data)))
	return data, nil
}

func (s *Store) readRange(key string, o datastore.GetOptions) ([]byte, error) {
	f, err := os.Open(s.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", datastore.ErrNotFound, key)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if o.Offset >= info.Size() {
		return []byte{}, nil
	}
	if o.Offset > 0 {
		if _, err := f.Seek(o.Offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek %s: %w", key, err)
		}
	}

	var r io.Reader = f
	if o.HasSize {
		r = io.LimitReader(f, o.Size)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put writes data to the file at key. The write goes to a temp file
// renamed into place, so readers never observe a partial object.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	n, err := s.putStream(key, bytes.NewReader(data))
	metrics.RecordOperation(storeKind, "put", time.Since(start), err == nil)
	if err != nil {
		return err
	}
	metrics.RecordBytesWritten(storeKind, n)
	return nil
}

// Append appends data to the file at key, creating it if absent.
func (s *Store) Append(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := s.appendFile(key, data)
	metrics.RecordOperation(storeKind, "append", time.Since(start), err == nil)
	if err != nil {
		return err
	}
	metrics.RecordBytesWritten(storeKind, int64(len(data)))
	return nil
}

func (s *Store) appendFile(key string, data []byte) error {
	path := s.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dirs for %s: %w", key, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	return f.Close()
}

// Upload copies the file at srcPath to key.
func (s *Store) Upload(ctx context.Context, key, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()

	start := time.Now()
	n, err := s.putStream(key, src)
	metrics.RecordOperation(storeKind, "upload", time.Since(start), err == nil)
	if err != nil {
		return err
	}
	metrics.RecordBytesWritten(storeKind, n)
	return nil
}

func (s *Store) putStream(key string, body io.Reader) (int64, error) {
	path := s.fullPath(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create dirs for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".mlrun-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close temp for %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("rename temp to %s: %w", key, err)
	}
	return n, nil
}

// Stat returns size and modification time of the file at key.
func (s *Store) Stat(ctx context.Context, key string) (*datastore.ObjectInfo, error) {
	start := time.Now()
	info, err := os.Stat(s.fullPath(key))
	metrics.RecordOperation(storeKind, "stat", time.Since(start), err == nil)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", datastore.ErrNotFound, key)
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return &datastore.ObjectInfo{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// ListDir lists all files under the directory at key, recursively,
// as slash separated paths relative to it.
func (s *Store) ListDir(ctx context.Context, key string) ([]string, error) {
	root := s.fullPath(key)
	start := time.Now()

	var keys []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	metrics.RecordOperation(storeKind, "listdir", time.Since(start), err == nil)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", datastore.ErrNotFound, key)
		}
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	return keys, nil
}

// Rm removes the file at key, or the whole directory tree with
// WithRecursive. Removing an absent path is not an error.
func (s *Store) Rm(ctx context.Context, key string, opts ...datastore.RmOption) error {
	o := datastore.NewRmOptions(opts...)
	if err := o.Validate(); err != nil {
		return err
	}
	path := s.fullPath(key)

	start := time.Now()
	var err error
	if o.Recursive {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
		if err != nil && os.IsNotExist(err) {
			err = nil
		}
	}
	metrics.RecordOperation(storeKind, "rm", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
