// Package orchestrator implements the tiered feature-lifecycle system of the
// platform. Features are partitioned into three criticality tiers (core,
// advanced, optional) that start up, degrade and report health independently,
// so failures in low-priority features never take down high-priority ones.
//
// # Components
//
//   - Registry: immutable feature descriptors plus orchestrator-owned runtime
//     state, one shared registry per tier.
//   - Resolver: deterministic depth-first topological sort with cycle
//     detection.
//   - Lazy loader: fetches heavy runtime dependencies just before a feature's
//     construction, with progress reporting and bounded retries.
//   - Batch executor: runs a tier's features in ordered batches, either
//     fan-out settle-all or strictly sequential, racing every constructor
//     against a per-feature timeout and routing failures by criticality.
//   - TierOrchestrator: the per-tier state machine with idempotent Initialize
//     and a recurring health monitor.
//   - Combined: sequences the tiers (core, then advanced, then optional) and
//     aggregates health with tier precedence.
//
// # Non-interference
//
// A failure in a lower tier never elevates the reported severity of a higher
// tier: a critical feature may fail only in its own tier's verdict, optional
// tier outcomes never flip the combined success flag, and the overall verdict
// is computed from the core and advanced tiers alone.
//
// # Concurrency
//
// Fan-out batches settle all constructors before reporting; a timed-out
// constructor keeps running and its late result is discarded. The health
// monitor runs per tier on its own timer with a tick-in-progress guard. The
// registry is the only shared mutable state; its writers are the initializer
// and the health monitor, both confined to one tier's orchestrator.
package orchestrator
