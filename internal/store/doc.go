// Package store provides the SQLite-backed delivery trace ledger.
//
// Simulation runs append one row per applied patch envelope so a run can
// be replayed for inspection: which envelope reached which site at which
// schedule step, and what the site's value was afterwards. Ordering is by
// step (a logical schedule position), never wall time, so traces compare
// deterministically.
//
// The ledger is diagnostics only. Field state is never persisted here; a
// fresh ":memory:" database per run is the normal mode.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
