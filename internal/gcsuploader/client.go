// Package gcsuploader moves ledger snapshots in and out of Google Cloud Storage.
package gcsuploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/dvloznov/ledger-dashboard/internal/gcs"
)

// uploadTimeout bounds a single object write.
const uploadTimeout = 2 * time.Minute

// GCSStorageService is the concrete implementation of gcs.StorageService
// that interacts with Google Cloud Storage.
type GCSStorageService struct {
	client *storage.Client
}

// NewGCSStorageService creates a storage client.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
func NewGCSStorageService(ctx context.Context) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStorageService: create storage client: %w", err)
	}
	return &GCSStorageService{client: client}, nil
}

// Upload implements gcs.StorageService.
func (s *GCSStorageService) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: writing %s: %w", gcs.URI(bucket, object), err)
	}

	// Close finalizes the upload; the object is not visible before this succeeds.
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize %s: %w", gcs.URI(bucket, object), err)
	}
	return nil
}

// Download implements gcs.StorageService.
func (s *GCSStorageService) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, gcs.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Download: open reader %s: %w", gcs.URI(bucket, object), err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Download: reading %s: %w", gcs.URI(bucket, object), err)
	}
	return data, nil
}

// Close releases the underlying client.
func (s *GCSStorageService) Close() error {
	return s.client.Close()
}

var _ gcs.StorageService = (*GCSStorageService)(nil)
