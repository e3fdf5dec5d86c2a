package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// BundleFetcher resolves heavy feature dependencies against the asset bucket.
// It implements the orchestrator's AssetFetcher: fetching a dependency means
// verifying its bundle object exists and is reachable, which is what the
// lazy-load phase needs before a feature constructor may run.
type BundleFetcher struct {
	client Client
	bucket string
	prefix string
}

// NewBundleFetcher creates a fetcher rooted at the configured bundle prefix.
func NewBundleFetcher(client Client, cfg Config) *BundleFetcher {
	return &BundleFetcher{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.BundlePrefix,
	}
}

// Fetch stats the bundle object for one heavy dependency.
func (f *BundleFetcher) Fetch(ctx context.Context, name string) error {
	object := f.prefix + name
	if _, err := f.client.StatObject(ctx, f.bucket, object, minio.StatObjectOptions{}); err != nil {
		return fmt.Errorf("bundle %q unavailable: %w", object, err)
	}
	return nil
}
