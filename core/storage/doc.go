// Package storage provides the object store client behind the document
// archive.
//
// It wraps the MinIO Go client and works against MinIO or AWS S3. The
// Client interface only carries the operations the archive needs, which
// keeps it easy to mock (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket at startup.
//   - PutObject: stores a published document.
//   - GetObject / ListObjects: read archived documents back.
//
// # Usage
//
//	client, err := storage.NewClient(cfg)
//	err = storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region)
package storage
