package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jencodes13/course-correction/internal/types"
)

type fileRef = types.FileReference

type stubUploader struct {
	calls int
	uri   string
	err   error
}

func (s *stubUploader) upload(_ context.Context, _ []byte, _ string) (string, error) {
	s.calls++
	return s.uri, s.err
}

type stubDownloader struct {
	data map[string][]byte
	mime string
}

func (s *stubDownloader) Download(_ context.Context, bucket, path string) ([]byte, string, error) {
	data, ok := s.data[bucket+"/"+path]
	if !ok {
		return nil, "", fmt.Errorf("file download failed: missing object")
	}
	return data, s.mime, nil
}

func newTestResolver(up uploader, dl *stubDownloader) *Resolver {
	r := &Resolver{up: up, log: zap.NewNop()}
	if dl != nil {
		r.storage = dl
	}
	return r
}

func inlineRef(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func TestResolveParts_SmallInlineStaysInline(t *testing.T) {
	up := &stubUploader{uri: "files/abc"}
	r := newTestResolver(up, nil)

	parts, err := r.ResolveParts(context.Background(), []fileRef{
		{MIMEType: "text/plain", Data: inlineRef([]byte("small"))},
	})
	require.NoError(t, err)
	require.Len(t, parts, 1)

	blob, ok := parts[0].(genai.Blob)
	require.True(t, ok, "expected inline blob, got %T", parts[0])
	assert.Equal(t, "text/plain", blob.MIMEType)
	assert.Equal(t, []byte("small"), blob.Data)
	assert.Equal(t, 0, up.calls, "small payloads must never hit the upload path")
}

func TestResolveParts_LargePayloadGoesRemote(t *testing.T) {
	up := &stubUploader{uri: "files/big"}
	r := newTestResolver(up, nil)

	big := make([]byte, InlineByteLimit+1)
	parts, err := r.ResolveParts(context.Background(), []fileRef{
		{MIMEType: "application/pdf", Data: inlineRef(big)},
	})
	require.NoError(t, err)
	require.Len(t, parts, 1)

	fd, ok := parts[0].(genai.FileData)
	require.True(t, ok, "expected remote file data, got %T", parts[0])
	assert.Equal(t, "files/big", fd.URI)
	assert.Equal(t, "application/pdf", fd.MIMEType)
	assert.Equal(t, 1, up.calls)
}

func TestResolveParts_ExactThresholdStaysInline(t *testing.T) {
	up := &stubUploader{}
	r := newTestResolver(up, nil)

	exact := make([]byte, InlineByteLimit)
	parts, err := r.ResolveParts(context.Background(), []fileRef{
		{Data: inlineRef(exact)},
	})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	_, ok := parts[0].(genai.Blob)
	assert.True(t, ok)
	assert.Equal(t, 0, up.calls)
}

func TestResolveParts_StorageBackedRef(t *testing.T) {
	dl := &stubDownloader{
		data: map[string][]byte{"uploads/deck.pdf": []byte("pdfbytes")},
		mime: "application/pdf",
	}
	r := newTestResolver(&stubUploader{}, dl)

	parts, err := r.ResolveParts(context.Background(), []fileRef{
		{Bucket: "uploads", Path: "deck.pdf"},
	})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	blob := parts[0].(genai.Blob)
	assert.Equal(t, "application/pdf", blob.MIMEType)
	assert.Equal(t, []byte("pdfbytes"), blob.Data)
}

func TestResolveParts_DeclaredMIMEWinsOverInferred(t *testing.T) {
	dl := &stubDownloader{
		data: map[string][]byte{"uploads/notes.bin": []byte("text")},
		mime: "application/octet-stream",
	}
	r := newTestResolver(&stubUploader{}, dl)

	parts, err := r.ResolveParts(context.Background(), []fileRef{
		{Bucket: "uploads", Path: "notes.bin", MIMEType: "text/plain"},
	})
	require.NoError(t, err)
	blob := parts[0].(genai.Blob)
	assert.Equal(t, "text/plain", blob.MIMEType)
}

func TestResolveParts_SkipsEmptyRefs(t *testing.T) {
	r := newTestResolver(&stubUploader{}, nil)

	parts, err := r.ResolveParts(context.Background(), []fileRef{
		{Name: "nothing-here"},
		{MIMEType: "text/plain", Data: inlineRef([]byte("x"))},
	})
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}

func TestResolveParts_StorageUnconfigured(t *testing.T) {
	r := newTestResolver(&stubUploader{}, nil)

	_, err := r.ResolveParts(context.Background(), []fileRef{
		{Bucket: "uploads", Path: "deck.pdf"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage is not configured")
}

func TestResolveParts_PreservesOrder(t *testing.T) {
	r := newTestResolver(&stubUploader{}, nil)

	refs := []fileRef{
		{MIMEType: "text/plain", Data: inlineRef([]byte("first"))},
		{MIMEType: "text/plain", Data: inlineRef([]byte("second"))},
		{MIMEType: "text/plain", Data: inlineRef([]byte("third"))},
	}
	parts, err := r.ResolveParts(context.Background(), refs)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, []byte("first"), parts[0].(genai.Blob).Data)
	assert.Equal(t, []byte("second"), parts[1].(genai.Blob).Data)
	assert.Equal(t, []byte("third"), parts[2].(genai.Blob).Data)
}
