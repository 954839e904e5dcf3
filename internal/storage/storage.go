// Package storage downloads user uploads from S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Downloader fetches an object by bucket and path.
type Downloader interface {
	Download(ctx context.Context, bucket, path string) ([]byte, string, error)
}

// Store is a MinIO-backed Downloader.
type Store struct {
	client *minio.Client
}

// New connects to an S3-compatible endpoint.
func New(endpoint, accessKey, secretKey string, useSSL bool) (*Store, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is not configured")
	}
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Store{client: cli}, nil
}

// Download fetches an object and infers its MIME type from the path
// extension. The error message is deliberately generic; the cause is wrapped
// for server-side logging only.
func (s *Store) Download(ctx context.Context, bucket, path string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("file download failed: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("file download failed: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("file download failed: empty object %s/%s", bucket, path)
	}

	return data, MIMEFromPath(path), nil
}

// mimeByExt maps known upload extensions to MIME types.
var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".csv":  "text/csv",
	".json": "application/json",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
}

// MIMEFromPath infers a MIME type from the file extension, defaulting to
// application/octet-stream.
func MIMEFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := mimeByExt[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
