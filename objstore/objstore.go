// Package objstore stores blobs in an S3-compatible object store.
package objstore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore puts and fetches objects by bucket and name.
type ObjectStore interface {
	Put(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, obj string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, obj string) error
}

// MinioObjectStore implements ObjectStore on a minio client.
type MinioObjectStore struct {
	client *minio.Client
}

func NewMinioObjectStore(client *minio.Client) *MinioObjectStore {
	return &MinioObjectStore{client: client}
}

// NewMinioClient connects to endpoint with static credentials.
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", endpoint, err)
	}
	return client, nil
}

func (s *MinioObjectStore) Put(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, obj, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, obj, err)
	}
	return nil
}

func (s *MinioObjectStore) Get(ctx context.Context, bucket, obj string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, bucket, obj, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, obj, err)
	}
	return object, nil
}

func (s *MinioObjectStore) Delete(ctx context.Context, bucket, obj string) error {
	if err := s.client.RemoveObject(ctx, bucket, obj, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, obj, err)
	}
	return nil
}

// EnsureBucket creates bucket unless it already exists.
func (s *MinioObjectStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}
