// Package theming resolves design tokens (colors, typography) for decks.
// It is a critical core-tier feature that builds on the layout engine.
package theming
