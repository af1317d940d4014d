package staging

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	publicURL       string
	useSSL          bool
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) { c.endpoint = endpoint }
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) { c.bucket = bucket }
}

func WithCredentials(accessKey, secretAccessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
		c.secretAccessKey = secretAccessKey
	}
}

// WithPublicURL sets the base the returned object URIs are built on.
// Defaults to the endpoint itself.
func WithPublicURL(u string) MinioOpts {
	return func(c *minioConfig) { c.publicURL = u }
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) { c.useSSL = useSSL }
}

type MinioUploader struct {
	cfg    *minioConfig
	client *minio.Client
}

func NewMinioUploader(opts ...MinioOpts) (*MinioUploader, error) {
	cfg := &minioConfig{bucket: "animator-assets"}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.publicURL == "" {
		scheme := "http"
		if cfg.useSSL {
			scheme = "https"
		}
		cfg.publicURL = scheme + "://" + cfg.endpoint
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}

	return &MinioUploader{cfg: cfg, client: client}, nil
}

// EnsureBucket creates the staging bucket when it does not exist yet.
func (u *MinioUploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.cfg.bucket)
	if err != nil {
		return errors.Wrapf(err, "check bucket %s", u.cfg.bucket)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.cfg.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "create bucket %s", u.cfg.bucket)
	}
	return nil
}

func (u *MinioUploader) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	key := ObjectKey(uuid.NewString(), filename)

	_, err := u.client.PutObject(ctx, u.cfg.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "put object %s", key)
	}

	return ObjectURL(u.cfg.publicURL, u.cfg.bucket, key), nil
}

// ObjectKey builds "<prefix>/<sanitized filename>".
func ObjectKey(prefix, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "asset"
	}
	return prefix + "/" + name
}

func ObjectURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.Join(segments, "/")
}
