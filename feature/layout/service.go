package layout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"slideforge/core/orchestrator"
)

// Service computes slide layouts: region grids, element placement and
// overflow handling for a deck.
type Service struct {
	logger *zap.Logger
	grids  map[string][]Region
}

// Region is one placeable area of a slide grid.
type Region struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewService creates the layout service with the built-in grid catalog.
func NewService(logger *zap.Logger) *Service {
	return &Service{
		logger: logger,
		grids: map[string][]Region{
			"title": {
				{Name: "heading", X: 0.1, Y: 0.3, Width: 0.8, Height: 0.2},
				{Name: "subheading", X: 0.1, Y: 0.55, Width: 0.8, Height: 0.1},
			},
			"two-column": {
				{Name: "heading", X: 0.05, Y: 0.05, Width: 0.9, Height: 0.15},
				{Name: "left", X: 0.05, Y: 0.25, Width: 0.425, Height: 0.7},
				{Name: "right", X: 0.525, Y: 0.25, Width: 0.425, Height: 0.7},
			},
			"full-bleed": {
				{Name: "content", X: 0, Y: 0, Width: 1, Height: 1},
			},
		},
	}
}

// Regions returns the regions of a named grid.
func (s *Service) Regions(ctx context.Context, grid string) ([]Region, error) {
	regions, ok := s.grids[grid]
	if !ok {
		return nil, fmt.Errorf("unknown layout grid %q", grid)
	}
	return regions, nil
}

// Grids lists the available grid names.
func (s *Service) Grids() []string {
	names := make([]string, 0, len(s.grids))
	for name := range s.grids {
		names = append(names, name)
	}
	return names
}

// Descriptor returns the feature registration for the layout engine. Layout
// is critical: no slide can render without placement.
func Descriptor(logger *zap.Logger) orchestrator.Descriptor {
	return orchestrator.Descriptor{
		ID:       "layout",
		Name:     "Layout Engine",
		Tier:     orchestrator.TierCore,
		Batch:    0,
		Critical: true,
		Init: func(ctx context.Context) (any, error) {
			return NewService(logger), nil
		},
	}
}
