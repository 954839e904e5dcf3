package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMIMEFromPath(t *testing.T) {
	cases := map[string]string{
		"deck.pdf":              "application/pdf",
		"course/IMAGE.PNG":      "image/png",
		"a/b/photo.jpeg":        "image/jpeg",
		"photo.jpg":             "image/jpeg",
		"notes.txt":             "text/plain",
		"readme.md":             "text/markdown",
		"page.html":             "text/html",
		"data.csv":              "text/csv",
		"payload.json":          "application/json",
		"slides.pptx":           "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"lecture.mp4":           "video/mp4",
		"mystery.bin":           "application/octet-stream",
		"no-extension":          "application/octet-stream",
		"archive.tar.gz":        "application/octet-stream",
		"trailing/slash/x.webp": "image/webp",
	}
	for path, want := range cases {
		assert.Equal(t, want, MIMEFromPath(path), path)
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New("", "ak", "sk", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
