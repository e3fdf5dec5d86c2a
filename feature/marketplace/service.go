package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"slideforge/core/orchestrator"
	"slideforge/core/storage"
	"slideforge/feature/templates"
)

// Listing is a published template plus its preview asset.
type Listing struct {
	Template templates.Template `json:"template"`
	Preview  string             `json:"preview,omitempty"`
}

// Service exposes the community template marketplace: published templates
// from the database joined with preview images from the asset bucket.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates the marketplace service.
func NewService(db *gorm.DB, client storage.Client, cfg storage.Config, logger *zap.Logger) (*Service, error) {
	if db == nil {
		return nil, errors.New("marketplace requires a database connection")
	}
	return &Service{
		db:     db,
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Browse lists published templates with their preview object, when one
// exists under previews/<slug>.png.
func (s *Service) Browse(ctx context.Context) ([]Listing, error) {
	var published []templates.Template
	err := s.db.WithContext(ctx).
		Where("published = ?", true).
		Order("updated_at DESC").
		Find(&published).Error
	if err != nil {
		return nil, fmt.Errorf("browse marketplace: %w", err)
	}

	listings := make([]Listing, 0, len(published))
	for _, t := range published {
		listing := Listing{Template: t}
		preview := "previews/" + t.Slug + ".png"
		if _, err := s.client.StatObject(ctx, s.bucket, preview, minio.StatObjectOptions{}); err == nil {
			listing.Preview = preview
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// Descriptor returns the feature registration for the marketplace.
func Descriptor(db *gorm.DB, client storage.Client, cfg storage.Config, logger *zap.Logger) orchestrator.Descriptor {
	return orchestrator.Descriptor{
		ID:    "marketplace",
		Name:  "Template Marketplace",
		Tier:  orchestrator.TierOptional,
		Batch: 0,
		Init: func(ctx context.Context) (any, error) {
			return NewService(db, client, cfg, logger)
		},
	}
}
