// Package storage persists the category tree and the reminder store as two
// independent whole-document snapshots.
//
// Drivers:
//   - "file": two JSON files next to the configured path prefix. Writes go to
//     a temp file first and are renamed into place, so a crash mid-write never
//     corrupts the previous snapshot.
//   - "sqlite": one database file; each snapshot save replaces the relevant
//     tables inside a single transaction.
//
// Startup read failures are intentionally non-fatal for callers: the reminder
// service logs them and starts with empty state.
package storage
