// Package storage provides the object-storage client used by the platform.
//
// It wraps a Minio/S3-compatible client behind the Client interface so that
// features and tests can substitute mocks. The BundleFetcher adapts the
// client to the orchestrator's lazy-loading phase: heavy feature dependencies
// (chart render packs, voice models, AR rigs) are stored as bundle objects
// under a configurable prefix and verified before the owning feature
// constructs.
package storage
