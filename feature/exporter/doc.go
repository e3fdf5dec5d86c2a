// Package exporter turns rendered decks into downloadable PDF and PPTX
// objects in the asset bucket.
package exporter
