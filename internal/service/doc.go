// Package service implements the inventory pipeline on top of the repository.
//
// # Services
//
// Classifier turns pending discoveries into asset registry entries. Placement
// is delegated to a Strategy: KeywordStrategy matches the SNMP location and
// name against the department/unit keyword catalog, IPRangeStrategy uses IP
// range ownership and a device-type vocabulary. Every device ends up with a
// department and a unit, falling back to the Unknown sentinels.
//
// LivenessService re-pings registered devices and appends a status ledger entry
// whenever a device flips between online and offline.
//
// MaintenanceService reports staging statistics and prunes old discoveries and
// ledger entries.
//
// OrganizationService loads the department/unit catalog from configuration.
//
// SweepService is the direct path: it sweeps a subnet and classifies every
// SNMP-answering host by IP range without going through staging.
//
// # Event System
//
// Services publish events via EventBus (scan, classification, status change,
// prune). Publishing never blocks; slow subscribers miss events.
package service
