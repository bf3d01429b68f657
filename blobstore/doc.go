// Package blobstore abstracts where point files live.
//
// A BlobStore opens named, immutable blobs. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory blobs for tests
//   - s3.Store: Amazon S3 with ranged and parallel downloads
//   - minio.Store: MinIO and other S3-compatible servers
//
// Loaders read a whole blob through NewReader, which picks the cheapest
// path the blob offers: a mapped byte slice, a parallel fetch, or a single
// ranged stream.
package blobstore
