// Package core provides the foundational domain types and interfaces used by
// API64. It defines the core abstractions for:
//
//   - Artifacts (immutable files produced by one ingestion call)
//   - Ingestion requests and results (transient, per call)
//   - The ArtifactStore contract implemented by storage backends
//   - The error kinds every component reports failures with
//
// The package keeps implementation concerns (persistence,
// transport, orchestration) out of scope, exposing small interfaces so that
// storage backends and transports can be swapped without touching callers.
package core
