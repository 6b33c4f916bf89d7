// Package models defines the records that flow through a chart-to-playlist conversion.
//
// Input and output records:
//   - [Track] : one chart entry handed in by the page scraper or a track file
//   - [VideoCandidate] : one admissible search result for a track
//   - [TrackOutcome] : the per-track classification (skipped, found, not_found)
//   - [ConversionResult] : aggregate of a finished run with the batch playlist link
//
// Run bookkeeping:
//   - [ConversionState] : snapshot of the single conversion slot
//   - [ProgressEvent] and [Event] : messages pushed to UI listeners
//   - [StoredResult] : a persisted result with its creation timestamp
package models
