package storage

import (
	"context"
	"io"
	"path"
	"time"
)

// Package storage holds the upload archive: accepted files are retained in
// an S3-compatible object store before being forwarded for analysis, keyed
// by the request's correlation id. Implementations must avoid local disk
// and rely on streaming I/O only.

// PutObjectOptions define optional parameters for archiving objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an archived object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the S3-compatible archive client interface. The archive is an
// operator-facing retention store: the gateway writes and discards, it never
// reads archived content back.
type Storage interface {
	// Put archives an object under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an archived object by key.
	Delete(ctx context.Context, key string) error
}

// ArchiveKey builds the object key for one uploaded file within an
// extraction request.
func ArchiveKey(correlationID, filename string) string {
	return path.Join("extracts", correlationID, filename)
}
