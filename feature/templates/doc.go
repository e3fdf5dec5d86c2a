// Package templates stores and retrieves reusable deck templates from the
// relational database.
package templates
