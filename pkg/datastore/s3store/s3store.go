// Package s3store implements the datastore.Store interface over S3 or an
// S3-compatible service such as MinIO.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nethajinirmal13/mlrun/internal/logging"
	"github.com/nethajinirmal13/mlrun/internal/metrics"
	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

const storeKind = "s3"

// Credential names resolved through secrets or the environment when no
// static credentials are configured.
const (
	SecretAccessKey = "AWS_ACCESS_KEY_ID"
	SecretSecretKey = "AWS_SECRET_ACCESS_KEY"
)

// Config holds S3 connection settings.
type Config struct {
	// Bucket all keys live in.
	Bucket string
	// Endpoint overrides the AWS endpoint, for MinIO and other
	// compatible services. Empty means AWS itself.
	Endpoint string
	Region   string
	// AccessKey and SecretKey are static credentials. Both empty falls
	// back to the SDK default chain (environment, shared config,
	// instance role).
	AccessKey string
	SecretKey string
	// PathStyle forces path style addressing. A custom endpoint
	// implies it.
	PathStyle bool
}

// Store is an S3 backed object store scoped to one bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates an S3 store for the configured bucket.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, datastore.InvalidArgument("s3 url has no bucket")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			},
		)
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle || cfg.Endpoint != ""
	})

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// objectKey maps a path-like key to the S3 object key.
func (s *Store) objectKey(key string) string {
	return strings.TrimPrefix(key, "/")
}

// Kind returns "s3".
func (s *Store) Kind() string { return storeKind }

// Get reads the object at key, or the byte range selected by the
// options. Unlike redis, S3 rejects a range that starts past the end of
// the object; that error propagates as is.
func (s *Store) Get(ctx context.Context, key string, opts ...datastore.GetOption) ([]byte, error) {
	o := datastore.NewGetOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}
	if o.Offset > 0 || o.HasSize {
		var rangeStr string
		if o.HasSize {
			rangeStr = fmt.Sprintf("bytes=%d-%d", o.Offset, o.End())
		} else {
			rangeStr = fmt.Sprintf("bytes=%d-", o.Offset)
		}
		input.Range = aws.String(rangeStr)
	}

	start := time.Now()
	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		metrics.RecordOperation(storeKind, "get", time.Since(start), false)
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", datastore.ErrNotFound, key)
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	metrics.RecordOperation(storeKind, "get", time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	metrics.RecordBytesRead(storeKind, int64(len(data)))
	return data, nil
}

// Put overwrites the object at key unconditionally.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	metrics.RecordOperation(storeKind, "put", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	metrics.RecordBytesWritten(storeKind, int64(len(data)))

	logging.Debug("s3 put object",
		logging.String("key", key),
		logging.Int("size", len(data)))
	return nil
}

// Append appends data to the object at key. S3 has no native append, so
// this is a read-modify-write; concurrent appends can lose updates.
func (s *Store) Append(ctx context.Context, key string, data []byte) error {
	existing, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, datastore.ErrNotFound) {
		return err
	}
	return s.Put(ctx, key, append(existing, data...))
}

// Upload streams the file at srcPath to the object at key.
func (s *Store) Upload(ctx context.Context, key, srcPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	start := time.Now()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	metrics.RecordOperation(storeKind, "upload", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	metrics.RecordBytesWritten(storeKind, info.Size())

	logging.Debug("s3 upload",
		logging.String("key", key),
		logging.Int64("bytes", info.Size()))
	return nil
}

// Stat returns size and modification time of the object at key.
func (s *Store) Stat(ctx context.Context, key string) (*datastore.ObjectInfo, error) {
	start := time.Now()
	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	metrics.RecordOperation(storeKind, "stat", time.Since(start), err == nil)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", datastore.ErrNotFound, key)
		}
		return nil, fmt.Errorf("head object %s: %w", key, err)
	}
	return &datastore.ObjectInfo{
		Size:    aws.ToInt64(result.ContentLength),
		ModTime: aws.ToTime(result.LastModified),
	}, nil
}

// ListDir lists all objects under the key prefix, as paths relative to
// it.
func (s *Store) ListDir(ctx context.Context, key string) ([]string, error) {
	prefix := s.dirPrefix(key)

	start := time.Now()
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			metrics.RecordOperation(storeKind, "listdir", time.Since(start), false)
			return nil, fmt.Errorf("list %s: %w", key, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	metrics.RecordOperation(storeKind, "listdir", time.Since(start), true)
	return keys, nil
}

// Rm removes the object at key, or every object under it with
// WithRecursive. Removing an absent object is not an error.
func (s *Store) Rm(ctx context.Context, key string, opts ...datastore.RmOption) error {
	o := datastore.NewRmOptions(opts...)
	if err := o.Validate(); err != nil {
		return err
	}

	start := time.Now()
	if !o.Recursive {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(key)),
		})
		metrics.RecordOperation(storeKind, "rm", time.Since(start), err == nil)
		if err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	}

	prefix := s.dirPrefix(key)
	var deleted int64
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			metrics.RecordOperation(storeKind, "rm", time.Since(start), false)
			return fmt.Errorf("list %s: %w", key, err)
		}
		for _, obj := range page.Contents {
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				metrics.RecordOperation(storeKind, "rm", time.Since(start), false)
				return fmt.Errorf("delete %s: %w", aws.ToString(obj.Key), err)
			}
			deleted++
		}
	}
	metrics.RecordOperation(storeKind, "rm", time.Since(start), true)
	metrics.RecordKeysDeleted(storeKind, deleted)

	logging.Debug("recursive delete finished",
		logging.String("key", key),
		logging.Int64("keys", deleted))
	return nil
}

// dirPrefix maps a path-like key to the object key prefix covering
// everything under it.
func (s *Store) dirPrefix(key string) string {
	prefix := s.objectKey(key)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
