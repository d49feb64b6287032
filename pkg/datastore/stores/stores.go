// Package stores wires the built-in backends into a datastore.Manager.
package stores

import (
	"context"

	"github.com/nethajinirmal13/mlrun/pkg/datastore"
	"github.com/nethajinirmal13/mlrun/pkg/datastore/filestore"
	"github.com/nethajinirmal13/mlrun/pkg/datastore/redisstore"
	"github.com/nethajinirmal13/mlrun/pkg/datastore/s3store"
)

// Config carries per backend defaults applied when object URLs leave
// details out.
type Config struct {
	// RedisURL is the endpoint used when a redis URL has no host.
	RedisURL string
	// FileRoot is prepended to file store keys when set.
	FileRoot string
	// S3 settings applied to every bucket store.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
}

// NewManager creates a manager with every built-in scheme registered.
func NewManager(cfg Config, secrets datastore.Secrets) *datastore.Manager {
	m := datastore.NewManager(datastore.WithSecrets(secrets))
	Register(m, cfg)
	return m
}

// Register adds the built-in schemes to m: redis, rediss, s3 and file.
func Register(m *datastore.Manager, cfg Config) {
	redisFactory := func(ctx context.Context, scheme, endpoint string, secrets datastore.Secrets) (datastore.Store, error) {
		if endpoint == "" {
			endpoint = cfg.RedisURL
		}
		return redisstore.New(redisstore.Config{
			Endpoint: endpoint,
			Scheme:   scheme,
			Secrets:  secrets,
		})
	}
	m.Register("redis", redisFactory)
	m.Register("rediss", redisFactory)

	m.Register("s3", func(ctx context.Context, scheme, endpoint string, secrets datastore.Secrets) (datastore.Store, error) {
		access, secret := cfg.S3AccessKey, cfg.S3SecretKey
		if access == "" && secret == "" {
			access = secrets.GetOrEnv(s3store.SecretAccessKey)
			secret = secrets.GetOrEnv(s3store.SecretSecretKey)
		}
		return s3store.New(ctx, s3store.Config{
			Bucket:    endpoint,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: access,
			SecretKey: secret,
			PathStyle: cfg.S3PathStyle,
		})
	})

	m.Register("file", func(ctx context.Context, scheme, endpoint string, secrets datastore.Secrets) (datastore.Store, error) {
		return filestore.New(filestore.Config{Root: cfg.FileRoot})
	})
}
