package templates

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"slideforge/core/database"
	"slideforge/core/orchestrator"
)

// Service provides access to stored deck templates.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates the template service and verifies the database is
// reachable.
func NewService(db *gorm.DB, logger *zap.Logger) (*Service, error) {
	if db == nil {
		return nil, errors.New("template store requires a database connection")
	}
	return &Service{db: db, logger: logger}, nil
}

// List returns all templates, optionally only published ones.
func (s *Service) List(ctx context.Context, publishedOnly bool) ([]Template, error) {
	var out []Template
	q := s.db.WithContext(ctx)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if err := q.Order("slug").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

// Get returns one template by slug.
func (s *Service) Get(ctx context.Context, slug string) (*Template, error) {
	var t Template
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("template %q not found", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

// Save upserts a template by slug.
func (s *Service) Save(ctx context.Context, t *Template) error {
	if t.Slug == "" {
		return errors.New("template slug is required")
	}
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

// Descriptor returns the feature registration for the template store. The
// probe pings the database so a lost connection demotes the feature.
func Descriptor(db *gorm.DB, logger *zap.Logger) orchestrator.Descriptor {
	return orchestrator.Descriptor{
		ID:    "templates",
		Name:  "Template Store",
		Tier:  orchestrator.TierAdvanced,
		Batch: 0,
		Init: func(ctx context.Context) (any, error) {
			return NewService(db, logger)
		},
		Probe: func(ctx context.Context, instance any) bool {
			svc, ok := instance.(*Service)
			if !ok {
				return false
			}
			return database.Ping(ctx, svc.db)
		},
	}
}
