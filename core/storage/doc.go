// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a narrow interface: attendance workbooks are
// listed and downloaded from the input prefix, and generated reports are uploaded
// under the report prefix. Both AWS S3 and self-hosted MinIO are supported.
//
// # Client Interface
//
// The Client interface makes storage interactions easy to mock in unit tests
// (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: verify or create the bucket (see EnsureBucket).
//   - PutObject: upload a report.
//   - GetObject: stream a workbook.
//   - ListObjects: list workbooks under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
