// Package domain defines the core business entities for figsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Node: A read-only snapshot of a node in the upstream design document
//   - DiscoveredAsset: A flattened (page, frame) record produced by indexing
//   - SyncJob: The status record of one out-of-band fetch-and-store run
//   - Template: Grouped assets discovered from template-style pages
//
// It also owns the blob store key layout (AssetKey, JobKey) because
// external consumers build asset URLs from those keys directly.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
