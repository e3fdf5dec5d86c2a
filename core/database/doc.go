// Package database manages the optional MySQL catalog connection.
//
// The catalog stores presentation templates and marketplace listings. The
// connection is established once at startup; features that need it receive
// the *gorm.DB handle through their constructors and probe it with Ping from
// the health monitor.
package database
