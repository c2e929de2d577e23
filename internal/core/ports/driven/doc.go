// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Reads the upstream design document and renders images
//   - ImageDownloader: Downloads rendered images from temporary URLs
//   - BlobStore: Key/value object store with metadata
//   - JobDispatcher: Hands worker requests to an out-of-band executor
//
// # Optional Interfaces
//
//   - SchedulerStore: Persists scheduled sync state. Only needed when
//     files are watched.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
