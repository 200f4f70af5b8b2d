// Package repositories implements SQLite persistence for the local operation history.
//
// Key Implementations:
//   - [HistoryRepository] : outcomes of playbook create/update commands, newest first
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
