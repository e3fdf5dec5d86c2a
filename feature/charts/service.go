package charts

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"slideforge/core/orchestrator"
	"slideforge/core/storage"
)

// RenderPack is the heavy dependency bundle holding chart rendering assets.
const RenderPack = "chart-render-pack"

// Service renders chart slides using assets from the render pack bundle.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewService creates the chart rendering service.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.BundlePrefix,
		logger: logger,
	}
}

// RenderAsset streams one asset out of the render pack, e.g. a chart
// template or font subset.
func (s *Service) RenderAsset(ctx context.Context, name string) (io.ReadCloser, error) {
	object := s.prefix + RenderPack + "/" + name
	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("render asset %q: %w", name, err)
	}
	return obj, nil
}

// Descriptor returns the feature registration for chart rendering. The
// render pack is fetched lazily before construction; the probe verifies the
// asset bucket stays reachable.
func Descriptor(client storage.Client, cfg storage.Config, logger *zap.Logger) orchestrator.Descriptor {
	return orchestrator.Descriptor{
		ID:                "charts",
		Name:              "Chart Rendering",
		Tier:              orchestrator.TierAdvanced,
		Batch:             0,
		RequiresHeavyDeps: true,
		HeavyDeps:         []string{RenderPack},
		Init: func(ctx context.Context) (any, error) {
			return NewService(client, cfg, logger), nil
		},
		Probe: func(ctx context.Context, instance any) bool {
			svc, ok := instance.(*Service)
			if !ok {
				return false
			}
			exists, err := svc.client.BucketExists(ctx, svc.bucket)
			return err == nil && exists
		},
	}
}
