// Package objectstore wraps a MinIO (S3-compatible) client behind the
// narrow surface the generation jobs need: upload artifact bytes and
// hand out time-limited download URLs.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the connection settings for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client is a bucket-scoped object storage client.
type Client struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewClient connects to the object store and ensures the configured
// bucket exists. If logger is nil, a default logger will be used.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("object store endpoint is not configured")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("object store bucket is not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store client: %w", err)
	}

	c := &Client{
		client: mc,
		bucket: cfg.Bucket,
		logger: logger.With(slog.String("component", "object_store")),
	}

	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// ensureBucket creates the bucket if it does not already exist.
func (c *Client) ensureBucket(ctx context.Context) error {
	err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := c.client.BucketExists(ctx, c.bucket)
		if errBucketExists == nil && exists {
			return nil
		}
		return fmt.Errorf("failed to create bucket %q: %w", c.bucket, err)
	}

	c.logger.Info("created object store bucket", slog.String("bucket", c.bucket))
	return nil
}

// UploadBytes stores data under objectKey, overwriting any previous
// object with the same key.
func (c *Client) UploadBytes(ctx context.Context, objectKey string, data []byte, contentType string) error {
	if objectKey == "" {
		return errors.New("object key cannot be empty")
	}

	_, err := c.client.PutObject(ctx, c.bucket, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		c.logger.Error("failed to upload object",
			slog.String("object_key", objectKey),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}

	c.logger.Debug("uploaded object",
		slog.String("object_key", objectKey),
		slog.Int("size_bytes", len(data)))
	return nil
}

// PresignedURL returns a time-limited GET URL for the object.
func (c *Client) PresignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if objectKey == "" {
		return "", errors.New("object key cannot be empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	u, err := c.client.PresignedGetObject(ctx, c.bucket, objectKey, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectKey, err)
	}

	return u.String(), nil
}
