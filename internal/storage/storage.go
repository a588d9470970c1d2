package storage

// Package storage contains the binary object store abstraction and its
// backends. Implementations rely on streaming I/O only; individual Put and
// Delete calls are atomic from the caller's point of view.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no object exists under the key.
// Delete on a missing key is NOT an error; that contract supports best-effort
// cleanup during replacement and rollback.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the binary object store client interface. Methods use context
// and streaming readers; no payload is ever buffered to local disk by the
// S3-backed implementation.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	// Returns ErrNotFound if no object exists under the key.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewObjectKey generates a collision-free storage key under prefix, keeping
// the extension of the original filename: <prefix>/<unixmilli>_<8 hex>.<ext>.
// Uniqueness is generation-time; keys are never reused after deletion. The
// millisecond prefix keeps keys roughly time-ordered, which bounds the scan
// of any out-of-band orphan sweep.
func NewObjectKey(prefix, originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	return path.Join(prefix, name)
}

// validKey rejects empty keys and path escapes before they reach a backend.
func validKey(key string) error {
	if key == "" {
		return errors.New("storage key must not be empty")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
