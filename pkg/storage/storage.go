package storage

import (
	"context"
	"io"
)

// Storage stores uploaded media and hands back a URL clients can fetch.
type Storage interface {
	// Write stores content from the reader with the given key.
	// size is -1 when unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes the content with the given key.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for key.
	URL(ctx context.Context, key string) (string, error)
}
