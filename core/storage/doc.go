// Package storage wraps the MinIO client for the report archive.
//
// The Client interface covers the calls the reconciler makes so tests can
// swap in core/storage/mocks. Any S3 compatible service works.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//		return err
//	}
//	err = storage.PutBytes(ctx, client, cfg.Storage.Bucket, "reports/x.csv", data, "text/csv")
package storage
