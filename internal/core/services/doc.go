// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The asset pipeline is split the same way the work is:
//
//   - AssetIndexer walks pages and frames of the design document
//   - StalenessDetector fingerprints frames and compares them with the cache
//   - SyncOrchestrator decides what is stale and dispatches a worker
//   - BatchWorker renders, downloads and stores assets out-of-band
//   - JobTracker reads and writes job markers
//   - AssetCatalogue serves read-only views and asset URLs
//   - Scheduler re-runs syncs of watched files
package services
