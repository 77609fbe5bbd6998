// Package storage holds the blob stores for profile photos.
package storage

import (
	"context"
	"io"
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

// Store is the photo blob store. Put and Delete satisfy auth.BlobStore;
// Open backs the image endpoint.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns image_not_found when key is absent.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ValidKey rejects empty keys, anything that could leave the store root and
// dot-prefixed names, which are reserved for in-flight uploads.
func ValidKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return domain.ErrInvalidFilename()
	}
	return nil
}
