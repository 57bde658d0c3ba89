package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing and retrieving snapshot blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for streaming writes. The blob is published
	// when the returned WritableBlob is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	io.Closer
}

// WritableBlob is a streaming write handle. Close finalizes and publishes
// the blob.
type WritableBlob interface {
	io.Writer
	io.Closer

	// Sync flushes buffered data where the backend supports it.
	Sync() error
}

// ReadAll reads the entire named blob into memory.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	data := make([]byte, blob.Size())
	if len(data) == 0 {
		return data, nil
	}

	n, err := blob.ReadAt(ctx, data, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("blobstore: read %s: %w", name, err)
	}
	if int64(n) != blob.Size() {
		return nil, fmt.Errorf("blobstore: read %s: short read %d of %d", name, n, blob.Size())
	}
	return data, nil
}
