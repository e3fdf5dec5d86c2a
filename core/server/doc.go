// Package server exposes the platform's management HTTP API.
//
// The API surfaces the orchestrator state over Fiber:
//
//   - GET  /health            combined health report across all tiers
//   - GET  /health/:tier      health report for one tier
//   - GET  /features/:id      one feature's health snapshot
//   - POST /features/:id/enable and /disable toggle the runtime flag
//   - GET  /live and /ready   kubernetes-style probes
//   - GET  /metrics           prometheus metrics
//
// Health report generation is deduplicated with singleflight so that probe
// storms do not multiply snapshot work. Management routes are protected by
// the API key middleware; probe and metrics routes stay public.
package server
