package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/config"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const uploadTimeout = 10 * time.Second

// Store uploads documents (hospital license files) to an S3-compatible bucket
// and hands back a stable public URL.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func New(cfg *config.Config) (*Store, error) {
	client, err := minio.New(cfg.BlobEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.BlobAccessKey, cfg.BlobSecretKey, ""),
		Secure: cfg.BlobUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	publicURL := cfg.BlobPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.BlobUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.BlobEndpoint, cfg.BlobBucket)
	}

	return &Store{
		client:    client,
		bucket:    cfg.BlobBucket,
		publicURL: publicURL,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

// Upload stores the document under folder/<uuid><ext> and returns its public
// URL. The original filename only contributes its extension.
func (s *Store) Upload(ctx context.Context, reader io.Reader, size int64, contentType, folder, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	key := path.Join(folder, uuid.New().String()+path.Ext(filename))
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to upload document")
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
