// Package layout provides the slide layout engine, the placement grid every
// other rendering feature builds on. It is a critical core-tier feature.
package layout
