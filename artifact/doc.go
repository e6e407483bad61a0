// Package artifact contains concrete implementations of core.ArtifactStore.
//
// The canonical ArtifactStore interface lives in the core package to keep
// domain contracts central. Implementations in this package provide storage
// backends that can be swapped without touching calling code:
//
//   - DiskStore keeps every artifact as a read-only file in one flat
//     directory. This is the production backend.
//   - InMemoryStore keeps artifacts in a map and is meant for tests and
//     throwaway local runs.
//
// Both backends are write-once. Save never replaces an existing name, and
// neither backend exposes an update or delete path. Both validate names with
// core.ValidateName before touching storage, so a name can never resolve
// outside the storage area.
package artifact
