// Package domain defines the core types of the netinventory asset discovery system.
//
// This package contains the entities and value objects shared by the probe engine,
// the classifier and the storage layer.
//
// # Staging
//
// DiscoveryRecord holds the raw, untrusted result of probing one IP address. Records
// are keyed by IP and move from pending to processed or failed exactly once per
// discovery.
//
// # Organization
//
// Department and Unit form the placement hierarchy. Each level has a sentinel row
// ("Unknown Department", "Unknown Unit") so every device can always be placed.
// IPRange assigns address ownership to a department for range-based classification.
//
// # Asset Registry
//
// Device is the canonical, classified asset, unique by IP address. StatusHistoryEntry
// is the append-only ledger of online/offline transitions observed by liveness
// re-checks.
//
// # Scenarios
//
// Scenario is the diagnostic label describing which of department, unit and user were
// resolved for a discovery. It is derived from three booleans and has no effect on
// persisted data.
//
// # Design Principles
//
// - No database or network dependencies
// - String-typed enumerations with explicit constants
// - Time is injected through Clock
package domain
