package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Storage stores images as objects in an S3-compatible bucket.
type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

var _ Storage = (*S3Storage)(nil)

// NewS3 connects to the object store and makes sure the bucket exists.
func NewS3(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket),
	}, nil
}

// Save implements Storage.
func (s *S3Storage) Save(ctx context.Context, dir string, img *Image) (string, error) {
	ref := objectName(dir, img)
	_, err := s.client.PutObject(ctx, s.bucket, ref, bytes.NewReader(img.Data), int64(len(img.Data)),
		minio.PutObjectOptions{ContentType: img.ContentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", ref, err)
	}
	return ref, nil
}

// Delete implements Storage.
func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", ref, err)
	}
	return nil
}

// URL implements Storage.
func (s *S3Storage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(ref, "/")
}
