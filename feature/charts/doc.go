// Package charts renders data visualizations for slides. Its render pack
// (templates, color scales, font subsets) is a heavy dependency fetched
// lazily from object storage before the service constructs.
package charts
