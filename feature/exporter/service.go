package exporter

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"slideforge/core/orchestrator"
	"slideforge/core/storage"
)

// Format is a supported export format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// Export describes a finished export stored in the asset bucket.
type Export struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	Format    Format    `json:"format"`
	Object    string    `json:"object"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service writes rendered decks into the asset bucket as downloadable
// exports.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates the exporter service.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}
}

// Store persists a rendered deck under exports/<deck>/<id>.<format>.
func (s *Service) Store(ctx context.Context, deckID string, format Format, rendered []byte) (*Export, error) {
	switch format {
	case FormatPDF, FormatPPTX:
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	id := uuid.NewString()
	object := fmt.Sprintf("exports/%s/%s.%s", deckID, id, format)
	info, err := s.client.PutObject(ctx, s.bucket, object,
		bytes.NewReader(rendered), int64(len(rendered)), minio.PutObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	s.logger.Info("export stored",
		zap.String("deck_id", deckID),
		zap.String("object", object),
		zap.Int64("size", info.Size),
	)
	return &Export{
		ID:        id,
		DeckID:    deckID,
		Format:    format,
		Object:    object,
		Size:      info.Size,
		CreatedAt: time.Now(),
	}, nil
}

// Remove deletes a stored export.
func (s *Service) Remove(ctx context.Context, export *Export) error {
	return s.client.RemoveObject(ctx, s.bucket, export.Object, minio.RemoveObjectOptions{})
}

// Descriptor returns the feature registration for the exporter. It depends
// on chart rendering so exported decks include chart slides.
func Descriptor(client storage.Client, cfg storage.Config, logger *zap.Logger) orchestrator.Descriptor {
	return orchestrator.Descriptor{
		ID:           "exporter",
		Name:         "Deck Exporter",
		Tier:         orchestrator.TierAdvanced,
		Batch:        1,
		Dependencies: []string{"charts"},
		Init: func(ctx context.Context) (any, error) {
			return NewService(client, cfg, logger), nil
		},
	}
}
