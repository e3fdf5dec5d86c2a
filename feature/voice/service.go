package voice

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"slideforge/core/orchestrator"
	"slideforge/core/storage"
)

// Heavy dependency bundles for narration.
const (
	VoiceModel   = "voice-model"
	PhonemeTable = "phoneme-table"
)

// Service produces narration audio for slides from the voice model bundle.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewService creates the narration service.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.BundlePrefix,
		logger: logger,
	}
}

// ModelReader streams a part of the voice model bundle.
func (s *Service) ModelReader(ctx context.Context, part string) (io.ReadCloser, error) {
	object := s.prefix + VoiceModel + "/" + part
	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("voice model part %q: %w", part, err)
	}
	return obj, nil
}

// Descriptor returns the feature registration for slide narration. Both the
// voice model and the phoneme table are fetched lazily; failures only ever
// degrade this optional feature.
func Descriptor(client storage.Client, cfg storage.Config, logger *zap.Logger) orchestrator.Descriptor {
	return orchestrator.Descriptor{
		ID:                "voice",
		Name:              "Slide Narration",
		Tier:              orchestrator.TierOptional,
		Batch:             0,
		RequiresHeavyDeps: true,
		HeavyDeps:         []string{VoiceModel, PhonemeTable},
		Init: func(ctx context.Context) (any, error) {
			return NewService(client, cfg, logger), nil
		},
	}
}
