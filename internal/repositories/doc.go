// Package repositories implements SQLite persistence for batch run history.
//
// Key Implementations:
//   - [RunRepository] : Stores each [models.Report] as a runs row plus one run_entries row per outcome
//
// Sequence numbers provide stable, human-readable run numbers (run #3) independent of UUIDs.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
