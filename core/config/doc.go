// Package config loads the application configuration from environment
// variables and an optional .env file.
//
// Each subsystem owns its partial Config struct (server, storage, database,
// logger, orchestrator); this package composes them and binds defaults from
// the 'default' struct tags so that every key is registered with Viper's
// AutomaticEnv. Nested keys map to underscore-separated environment
// variables, e.g. ORCHESTRATOR_FEATURE_TIMEOUT_SECONDS -> orchestrator.feature_timeout_seconds.
package config
