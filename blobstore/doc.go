// Package blobstore abstracts where matrices are read from and scan output is
// written to.
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads, atomic writes via rename
//   - MemoryStore: in-process, for tests
//   - ThrottledStore: wraps another store and rate limits writes
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: S3-compatible object stores
package blobstore
