// Package types defines the request and response DTOs exchanged with the
// browser client and with the Gemini response schemas.
package types

// FileReference is a client-supplied attachment. It carries either an inline
// base64 payload or an object-storage location; after resolution exactly one
// transport representation (inline bytes or remote file URI) is used.
type FileReference struct {
	Name     string `json:"name,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64
	Bucket   string `json:"bucket,omitempty"`
	Path     string `json:"path,omitempty"`
}

// HasInline reports whether the reference carries an inline base64 payload.
func (f FileReference) HasInline() bool { return f.Data != "" }

// HasStoragePath reports whether the reference points into object storage.
func (f FileReference) HasStoragePath() bool { return f.Bucket != "" && f.Path != "" }
