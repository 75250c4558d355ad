// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceGateway: Reads graphs, vocabularies and concepts from the graph API
//   - IndexGateway: Reads and writes concept documents in the search index
//   - SyncRunStore: Sync run history persistence
//   - SchedulerStore: Scheduled task state
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
