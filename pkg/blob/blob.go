// Package blob uploads local media files to remote storage and returns their
// public URLs. An empty local path is valid input and yields an empty URL, so
// optional attachments (cover images) need no special casing upstream.
package blob

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
)

// Uploader stores a local file remotely and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

var (
	ErrFileNotFound = errors.New("blob: local file not found")
	ErrUploadFailed = errors.New("blob: upload failed")
)

// contentType resolves a MIME type from the file extension, defaulting to
// application/octet-stream.
func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
