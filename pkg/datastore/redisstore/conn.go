package redisstore

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/nethajinirmal13/mlrun/internal/logging"
	"github.com/nethajinirmal13/mlrun/internal/metrics"
)

// dialFunc establishes a redis client from a connection URL and verifies
// it with a ping.
type dialFunc func(ctx context.Context, rawURL string) (redis.UniversalClient, error)

// client returns the shared backend handle, dialing on first use. A
// cluster client is tried first; when the target reports that it is not
// a cluster, the store falls back to a single node client for the same
// URL. Any other dial failure is returned as is, nothing is cached, and
// the next call dials again.
func (s *Store) client(ctx context.Context) (redis.UniversalClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.redis != nil {
		return s.redis, nil
	}

	mode := "cluster"
	c, err := s.dialCluster(ctx, s.info.url)
	if err != nil {
		if !isClusterDisabled(err) {
			return nil, err
		}
		mode = "single"
		c, err = s.dialSingle(ctx, s.info.url)
		if err != nil {
			return nil, err
		}
	}
	s.redis = c

	metrics.RecordConnection(storeKind, mode)
	logging.Debug("redis connection established",
		logging.String("endpoint", s.info.redacted),
		logging.String("mode", mode),
		logging.Bool("tls", s.info.secure))

	return c, nil
}

func dialClusterClient(ctx context.Context, rawURL string) (redis.UniversalClient, error) {
	opts, err := redis.ParseClusterURL(rawURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClusterClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func dialSingleClient(ctx context.Context, rawURL string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// isClusterDisabled reports whether err is the backend telling us it is
// not running in cluster mode. A standalone server answers cluster
// commands with "ERR This instance has cluster support disabled"; very
// old servers report the cluster command as unknown. Only this condition
// triggers the single node fallback, every other dial error is fatal.
func isClusterDisabled(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "cluster support disabled") {
		return true
	}
	return strings.Contains(msg, "unknown command") && strings.Contains(msg, "cluster")
}
