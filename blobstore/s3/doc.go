// Package s3 provides an S3 implementation of the blobstore.BlobStore
// interface, plus a DynamoDB-backed commit pointer for run manifests.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("runs/"))
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large outputs
//   - Automatic pagination for listing
//   - Conditional DynamoDB writes for the CURRENT pointer
package s3
