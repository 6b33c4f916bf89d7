// Package repositories implements SQLite persistence for finished conversion runs.
//
// [ConversionRepository] stores each run's result as a row in conversions, with the per-track
// outcomes encoded as JSON, plus one search_log row per track. Deletes are soft via deleted_at
// and deleted runs are excluded from every query.
//
// Sequence numbers provide stable ordering independent of UUIDs and creation timestamps, so
// "latest" is always the highest sequence. The [NextSequence] function atomically increments
// per-table counters kept in dedicated sequence tables.
package repositories
