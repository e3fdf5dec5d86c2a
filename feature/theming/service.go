package theming

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"slideforge/core/orchestrator"
)

// Theme is a resolved set of design tokens for a deck.
type Theme struct {
	Name       string            `json:"name"`
	Colors     map[string]string `json:"colors"`
	FontFamily string            `json:"font_family"`
}

// Service resolves theme tokens against the built-in theme catalog.
type Service struct {
	logger *zap.Logger
	themes map[string]Theme
}

// NewService creates the theming service.
func NewService(logger *zap.Logger) *Service {
	return &Service{
		logger: logger,
		themes: map[string]Theme{
			"default": {
				Name:       "default",
				Colors:     map[string]string{"primary": "#1a73e8", "surface": "#ffffff", "text": "#202124"},
				FontFamily: "Inter",
			},
			"midnight": {
				Name:       "midnight",
				Colors:     map[string]string{"primary": "#8ab4f8", "surface": "#202124", "text": "#e8eaed"},
				FontFamily: "Inter",
			},
		},
	}
}

// Resolve returns the named theme, falling back to the default theme for
// unknown names so a deck always renders with something.
func (s *Service) Resolve(ctx context.Context, name string) Theme {
	if theme, ok := s.themes[name]; ok {
		return theme
	}
	s.logger.Debug("unknown theme, using default", zap.String("theme", name))
	return s.themes["default"]
}

// Register adds a custom theme to the catalog.
func (s *Service) Register(theme Theme) error {
	if theme.Name == "" {
		return fmt.Errorf("theme name is required")
	}
	s.themes[theme.Name] = theme
	return nil
}

// Descriptor returns the feature registration for the theming engine. It
// depends on layout and therefore runs in the following batch.
func Descriptor(logger *zap.Logger) orchestrator.Descriptor {
	return orchestrator.Descriptor{
		ID:           "theming",
		Name:         "Theming Engine",
		Tier:         orchestrator.TierCore,
		Batch:        1,
		Critical:     true,
		Dependencies: []string{"layout"},
		Init: func(ctx context.Context) (any, error) {
			return NewService(logger), nil
		},
	}
}
