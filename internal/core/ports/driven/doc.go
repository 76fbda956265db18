// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - HistorySource: Reads one tool's conversation history from disk
//   - DatabasePool: Bounded read connections to tool SQLite databases
//   - Cache: Bounded in-memory store for parsed results and metadata
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GitActivity: Commit-activity signal for file ranking. Without it,
//     ranking relies on filesystem signals alone.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or history package
package driven
