// Package marketplace lists community-published deck templates, combining
// database rows with preview assets from object storage. It is optional and
// best-effort.
package marketplace
