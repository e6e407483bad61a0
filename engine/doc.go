// Package engine implements the ingestion and retrieval pipeline of API64.
//
// The Engine is the central coordination point between the transport layer
// and the storage backends. One ingestion call runs these steps in order:
//
//  1. Authenticate the caller against the shared secret
//  2. Resolve the file extension and decode the payload
//  3. Generate a unique name and persist the bytes, read-only
//  4. Optionally compute the SHA-256 digest of what was stored
//  5. Return the name, the public retrieval URL and the digest
//
// Field presence is checked by the transport, which can tell an absent field
// from an empty one. Empty values are accepted here: an empty media type
// yields an empty extension and an empty payload an empty artifact.
//
// A decode failure aborts before anything is written, and a storage failure
// leaves no artifact behind. A digest failure is different. The artifact is
// already stored at that point, but the call is still reported as failed.
//
// Retrieval is unauthenticated and delegates to the store after validating
// the name, so any caller who knows a name can read the artifact.
//
// # Concurrency
//
// The Engine holds no mutable state. Calls run independently on the
// caller's goroutine and take no locks; uniqueness of artifact names comes
// from the name generator alone.
//
// # Observability
//
// Every call is wrapped in an OpenTelemetry span and logged through the
// configured logging.Logger. Registered callbacks run after each call
// completes. The façade uses them to feed Prometheus counters.
package engine
