// Package redisstore implements the datastore.Store interface over redis,
// against either a single node or a cluster.
//
// Object keys are stored with their path tail wrapped in braces, see
// BuildStorageKey. Values are opaque strings capped at 512 MiB by redis
// itself. There is no filesystem surface and no per key metadata.
package redisstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nethajinirmal13/mlrun/internal/logging"
	"github.com/nethajinirmal13/mlrun/internal/metrics"
	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

const storeKind = "redis"

// uploadChunkSize is the read size used by Upload.
const uploadChunkSize = 1000 * 1000 // 1 MB

// sparkKeyPrefix marks the auxiliary namespace the spark integration
// stages intermediate artifacts under. Recursive removals sweep it too.
const sparkKeyPrefix = "_spark:"

// Config holds what New needs to resolve a store endpoint.
type Config struct {
	// Endpoint is the raw connection endpoint, with or without a
	// scheme, host:port or a full redis URL.
	Endpoint string
	// Scheme is the URL scheme the store was addressed by, redis or
	// rediss. It decides TLS when Endpoint carries no scheme of its
	// own. Empty defaults to redis.
	Scheme string
	// Secrets supplies REDIS_USER and REDIS_PASSWORD.
	Secrets datastore.Secrets
}

// Option overrides store internals.
type Option func(*Store)

// WithClient injects a pre-built client and skips lazy dialing. Meant
// for embedding the store behind an already managed connection.
func WithClient(c redis.UniversalClient) Option {
	return func(s *Store) {
		s.redis = c
	}
}

// Store is a redis backed object store. It dials on first use and keeps
// the one resulting handle for its whole lifetime; the client's own
// pooling makes it safe for concurrent use.
type Store struct {
	info connectionInfo

	mu    sync.Mutex
	redis redis.UniversalClient

	dialCluster dialFunc
	dialSingle  dialFunc
}

// New resolves the endpoint and creates the store. No connection is
// made until the first operation touches the backend.
func New(cfg Config, opts ...Option) (*Store, error) {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "redis"
	}
	info, err := resolveEndpoint(cfg.Endpoint, scheme, cfg.Secrets)
	if err != nil {
		return nil, err
	}

	s := &Store{
		info:        info,
		dialCluster: dialClusterClient,
		dialSingle:  dialSingleClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Kind returns "redis".
func (s *Store) Kind() string { return storeKind }

// Get reads the value at key, or the byte range selected by the
// options. Ranges past the end of the value come back truncated or
// empty, as redis defines for GETRANGE; a missing key reads as empty.
func (s *Store) Get(ctx context.Context, key string, opts ...datastore.GetOption) ([]byte, error) {
	o := datastore.NewGetOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := c.GetRange(ctx, BuildStorageKey(key, false), o.Offset, o.End()).Bytes()
	metrics.RecordOperation(storeKind, "get", time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("getrange %s: %w", key, err)
	}
	metrics.RecordBytesRead(storeKind, int64(len(data)))
	return data, nil
}

// Put overwrites the value at key unconditionally.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.Set(ctx, BuildStorageKey(key, false), data, 0).Err()
	metrics.RecordOperation(storeKind, "put", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	metrics.RecordBytesWritten(storeKind, int64(len(data)))
	return nil
}

// Append appends data to the value at key, creating it if absent.
func (s *Store) Append(ctx context.Context, key string, data []byte) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.Append(ctx, BuildStorageKey(key, false), string(data)).Err()
	metrics.RecordOperation(storeKind, "append", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	metrics.RecordBytesWritten(storeKind, int64(len(data)))
	return nil
}

// Upload reads srcPath in fixed size chunks and appends them to the
// value at key in order. A failure mid-stream leaves a partially
// written value; there is no rollback.
func (s *Store) Upload(ctx context.Context, key, srcPath string) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer f.Close()

	skey := BuildStorageKey(key, false)
	start := time.Now()
	var written int64
	buf := make([]byte, uploadChunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			if err := c.Append(ctx, skey, string(buf[:n])).Err(); err != nil {
				metrics.RecordOperation(storeKind, "upload", time.Since(start), false)
				return fmt.Errorf("append %s: %w", key, err)
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			metrics.RecordOperation(storeKind, "upload", time.Since(start), false)
			return fmt.Errorf("read %s: %w", srcPath, readErr)
		}
	}

	metrics.RecordOperation(storeKind, "upload", time.Since(start), true)
	metrics.RecordBytesWritten(storeKind, written)
	logging.Debug("uploaded file to redis",
		logging.String("key", key),
		logging.Int64("bytes", written))
	return nil
}

// Stat is not supported by the redis store.
func (s *Store) Stat(ctx context.Context, key string) (*datastore.ObjectInfo, error) {
	return nil, datastore.NotImplemented("stat is not supported by the redis store")
}

// ListDir lists every stored key under the logical prefix. The scan is
// cursor based and not a snapshot, so keys written or removed while it
// runs may or may not appear.
func (s *Store) ListDir(ctx context.Context, key string) ([]string, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		mu   sync.Mutex
		keys []string
	)
	err = s.scanKeys(ctx, c, wildcardPattern(key), func(storageKey string) error {
		mu.Lock()
		keys = append(keys, BuildLogicalKey(storageKey))
		mu.Unlock()
		return nil
	})
	metrics.RecordOperation(storeKind, "listdir", time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", key, err)
	}
	return keys, nil
}

// Rm deletes the key, or with WithRecursive everything under the
// prefix, including the spark staging namespace tied to it. Deleting
// absent keys is not an error. Both recursive passes are best effort
// with respect to concurrent writers.
func (s *Store) Rm(ctx context.Context, key string, opts ...datastore.RmOption) error {
	o := datastore.NewRmOptions(opts...)
	if err := o.Validate(); err != nil {
		return err
	}
	c, err := s.client(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	if !o.Recursive {
		err = c.Del(ctx, BuildStorageKey(key, false)).Err()
		metrics.RecordOperation(storeKind, "rm", time.Since(start), err == nil)
		if err != nil {
			return fmt.Errorf("del %s: %w", key, err)
		}
		return nil
	}

	pattern := wildcardPattern(key)
	var deleted atomic.Int64
	for _, p := range []string{pattern, sparkKeyPrefix + pattern} {
		err = s.scanKeys(ctx, c, p, func(storageKey string) error {
			if err := c.Del(ctx, storageKey).Err(); err != nil {
				return err
			}
			deleted.Add(1)
			return nil
		})
		if err != nil {
			break
		}
	}
	metrics.RecordOperation(storeKind, "rm", time.Since(start), err == nil)
	metrics.RecordKeysDeleted(storeKind, deleted.Load())
	if err != nil {
		return fmt.Errorf("recursive delete %s: %w", key, err)
	}

	logging.Debug("recursive delete finished",
		logging.String("key", key),
		logging.Int64("keys", deleted.Load()))
	return nil
}

// wildcardPattern builds the match pattern covering every storage key
// under the logical prefix.
func wildcardPattern(key string) string {
	pattern := BuildStorageKey(key, true)
	if strings.HasSuffix(pattern, "/") {
		return pattern + "*"
	}
	return pattern + "/*"
}

// scanKeys drains every key matching pattern through fn. On a cluster
// the scan fans out to all masters, since each node only knows its own
// slots; fn may then run from multiple goroutines.
func (s *Store) scanKeys(ctx context.Context, c redis.UniversalClient, pattern string, fn func(key string) error) error {
	if cc, ok := c.(*redis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return scanNode(ctx, node, pattern, fn)
		})
	}
	return scanNode(ctx, c, pattern, fn)
}

func scanNode(ctx context.Context, c redis.Cmdable, pattern string, fn func(key string) error) error {
	iter := c.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	return iter.Err()
}
