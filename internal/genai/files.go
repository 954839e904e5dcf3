package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jencodes13/course-correction/internal/storage"
	"github.com/jencodes13/course-correction/internal/types"
)

// InlineByteLimit is the decoded-size cutoff between inline base64 transport
// and the Files upload path.
const InlineByteLimit = 4 << 20

// Poll budget for remote file processing.
const (
	filePollAttempts = 30
	filePollInterval = time.Second
)

// PartResolver turns client file references into request parts.
type PartResolver interface {
	ResolveParts(ctx context.Context, refs []types.FileReference) ([]genai.Part, error)
}

// uploader abstracts the Files API upload so the routing logic is testable
// without network access.
type uploader interface {
	upload(ctx context.Context, data []byte, mime string) (uri string, err error)
}

// Resolver resolves file references: storage-backed references are
// downloaded, inline references are base64-decoded, and each payload is
// routed to inline or remote transport by size. References are resolved
// concurrently; result order matches input order.
type Resolver struct {
	storage storage.Downloader // nil when storage is not configured
	up      uploader
	log     *zap.Logger
}

// NewResolver builds a Resolver on top of a Gemini client. downloader may be
// nil; storage-backed references then resolve to an error.
func NewResolver(client *Client, downloader storage.Downloader, log *zap.Logger) *Resolver {
	return &Resolver{
		storage: downloader,
		up:      &fileUploader{client: client.client, log: log},
		log:     log,
	}
}

// ResolveParts resolves refs into parts. References with neither an inline
// payload nor a storage path are skipped.
func (r *Resolver) ResolveParts(ctx context.Context, refs []types.FileReference) ([]genai.Part, error) {
	slots := make([]genai.Part, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			part, err := r.resolve(gctx, ref)
			if err != nil {
				return err
			}
			slots[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parts := make([]genai.Part, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			parts = append(parts, p)
		}
	}
	return parts, nil
}

func (r *Resolver) resolve(ctx context.Context, ref types.FileReference) (genai.Part, error) {
	data, mime, err := r.payload(ctx, ref)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // nothing to attach
	}

	if len(data) <= InlineByteLimit {
		return genai.Blob{MIMEType: mime, Data: data}, nil
	}

	uri, err := r.up.upload(ctx, data, mime)
	if err != nil {
		return nil, err
	}
	return genai.FileData{MIMEType: mime, URI: uri}, nil
}

// payload materializes the reference's bytes and MIME type.
func (r *Resolver) payload(ctx context.Context, ref types.FileReference) ([]byte, string, error) {
	if ref.HasStoragePath() {
		if r.storage == nil {
			return nil, "", fmt.Errorf("storage is not configured for %s/%s", ref.Bucket, ref.Path)
		}
		return downloadWithMIME(ctx, r.storage, ref)
	}

	if ref.HasInline() {
		data, err := DecodeBase64(ref.Data)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload for %q: %w", ref.Name, err)
		}
		mime := ref.MIMEType
		if mime == "" {
			mime = "application/octet-stream"
		}
		return data, mime, nil
	}

	return nil, "", nil
}

func downloadWithMIME(ctx context.Context, d storage.Downloader, ref types.FileReference) ([]byte, string, error) {
	data, mime, err := d.Download(ctx, ref.Bucket, ref.Path)
	if err != nil {
		return nil, "", err
	}
	if ref.MIMEType != "" {
		mime = ref.MIMEType // declared type wins over extension inference
	}
	return data, mime, nil
}

// DecodeBase64 decodes a base64 payload, tolerating a data-URL prefix.
func DecodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx >= 0 {
			s = s[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

// fileUploader uploads through the Files API and polls until the remote file
// is active.
type fileUploader struct {
	client *genai.Client
	log    *zap.Logger
}

func (u *fileUploader) upload(ctx context.Context, data []byte, mime string) (string, error) {
	file, err := u.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{MIMEType: mime})
	if err != nil {
		return "", fmt.Errorf("file upload failed: %w", err)
	}

	for i := 0; i < filePollAttempts; i++ {
		switch file.State {
		case genai.FileStateActive:
			return file.URI, nil
		case genai.FileStateFailed:
			return "", fmt.Errorf("remote file processing failed: %s", file.Name)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(filePollInterval):
		}

		file, err = u.client.GetFile(ctx, file.Name)
		if err != nil {
			return "", fmt.Errorf("file state poll failed: %w", err)
		}
	}

	// Poll budget exhausted. Return the URI anyway; a non-active file may
	// still be rejected downstream.
	u.log.Warn("file still processing after poll budget",
		zap.String("file", file.Name), zap.String("mime", mime))
	return file.URI, nil
}
