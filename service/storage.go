package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elisa-rivadeneira/gestor-documentario/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// TempPrefix is the object prefix for uploads awaiting association with a
// record (the pre-create analysis flow).
const TempPrefix = "tmp/"

// StorageService keeps record files and attachments in a MinIO bucket.
type StorageService struct {
	client *minio.Client
	bucket string
	config *config.StorageConfig
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &StorageService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Upload stores an object and returns nothing; the object name is the caller's
// stable reference (recorded as the record's local_file).
func (s *StorageService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	return nil
}

// PresignedURL generates a temporary download URL for the object.
func (s *StorageService) PresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// Delete removes an object. Unknown objects are not an error.
func (s *StorageService) Delete(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// Promote moves a temp upload under a record's prefix once the record exists.
func (s *StorageService) Promote(ctx context.Context, tempName, finalName string) error {
	if !strings.HasPrefix(tempName, TempPrefix) {
		return fmt.Errorf("object %q is not a temp upload", tempName)
	}

	src := minio.CopySrcOptions{Bucket: s.bucket, Object: tempName}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: finalName}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("failed to copy temp object: %w", err)
	}

	return s.Delete(ctx, tempName)
}
