// Package storage provides an abstraction layer for S3-compatible object storage.
//
// It wraps the MinIO Go client behind the Client interface so the object backend
// of the key-value store can be tested with the mock in core/storage/mocks.
// Both AWS S3 and self-hosted MinIO instances are supported.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
