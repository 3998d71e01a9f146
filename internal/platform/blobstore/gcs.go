// Package blobstore uploads backup snapshots to Google Cloud Storage.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// ObjectWriterFactory opens a writer for one object in a bucket
type ObjectWriterFactory interface {
	NewWriter(ctx context.Context, bucket, object string) io.WriteCloser
}

type clientWriters struct {
	client *storage.Client
}

func (c clientWriters) NewWriter(ctx context.Context, bucket, object string) io.WriteCloser {
	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	return w
}

// GCSUploader writes objects under a prefix of one bucket
type GCSUploader struct {
	client  *storage.Client
	writers ObjectWriterFactory
	bucket  string
	prefix  string
	logger  *slog.Logger
}

// NewGCSUploader creates a client using Application Default Credentials
func NewGCSUploader(ctx context.Context, logger *slog.Logger, bucket, prefix string) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSUploader{
		client:  client,
		writers: clientWriters{client: client},
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger.With("component", "gcs_uploader", "bucket", bucket),
	}, nil
}

// Upload stores body as prefix/name and returns its gs:// URI
func (u *GCSUploader) Upload(ctx context.Context, name string, body []byte) (string, error) {
	object := path.Join(u.prefix, name)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := u.writers.NewWriter(ctx, u.bucket, object)
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy snapshot to GCS writer: %w", err)
	}
	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload of %s: %w", object, err)
	}

	uri := fmt.Sprintf("gs://%s/%s", u.bucket, object)
	u.logger.Info("Uploaded object", "object", object, "bytes", len(body))
	return uri, nil
}

func (u *GCSUploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}
