// Package minio provides a BlobStore backed by the MinIO client, for MinIO
// and other S3-compatible servers (Ceph, Garage, SeaweedFS).
//
// # Basic Usage
//
//	store, err := minio.Dial(ctx, minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "runs",
//	})
package minio
