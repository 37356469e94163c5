// Package repository defines the data access layer for netinventory.
//
// The sqlite subpackage is the only implementation. It persists:
//
// - the discovery staging store (one row per probed IP, pending/processed/failed)
// - the organization catalog (departments, units, IP ranges, sentinel rows)
// - the asset registry (devices, unique by IP address)
// - the device status ledger (online/offline transitions)
//
// # Schema Migration
//
// The sqlite repository creates its schema on startup and seeds the
// "Unknown Department" sentinel. Per-department "Unknown Unit" sentinels are
// created lazily and guarded by a partial unique index.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
