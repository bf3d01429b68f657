package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
var ErrNotFound = os.ErrNotExist

// BlobStore opens immutable blobs by name.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer

	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange streams length bytes starting at off. The range is clipped
	// to the blob size.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs backed by memory the caller can read
// directly. The slice is valid until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}

// Fetcher is implemented by blobs that can download their whole content
// faster than a single sequential stream.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// NewReader returns a sequential reader over the whole blob.
// Closing the reader does not close the blob.
func NewReader(ctx context.Context, b Blob) (io.ReadCloser, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	if f, ok := b.(Fetcher); ok {
		data, err := f.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	if b.Size() == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	return b.ReadRange(ctx, 0, b.Size())
}

// clip returns the inclusive end offset of a range request, or false if
// the range is empty.
func clip(off, length, size int64) (int64, bool) {
	if off < 0 || length <= 0 || off >= size {
		return 0, false
	}
	return min(off+length, size) - 1, true
}
