// Package store provides SQLite-backed durable storage for harness runs.
//
// The store is an append-only log with two tables:
//   - runs: one row per scenario execution, with its pass/fail outcome
//   - steps: one row per executed step, with the zone it produced
//
// Zones are recorded by their display string and hex BLAKE3 hash only.
// There is no zone decoding format; a run is a record of what happened,
// not a snapshot to resume from.
//
// # Ordering
//
// All ordering uses seq INTEGER (the harness's logical clock), never
// timestamps. Run IDs are UUIDv7 and so sort by creation time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
