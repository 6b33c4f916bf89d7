// Package tasks converts a list of chart tracks into a single batch playlist link.
//
// # Conversion Slot
//
// A [Converter] holds exactly one [models.ConversionState]. Starting a run claims the slot under a
// mutex; a second start while a run is active fails with [shared.ErrConversionInProgress] and leaves
// the running state untouched. The phase moves idle → running → completed or failed, and any later
// start begins a new run from either terminal phase.
//
// # Run Loop
//
// Tracks are processed strictly in order on a single goroutine. For each track the converter:
//  1. builds the query (artists - title - version), skipping tracks without one
//  2. emits a searching event and asks the [Resolver] for a video
//  3. emits found or not_found, then pauses per the [DelayPolicy]
//
// When the loop ends the playlist link is built from the found ids, the result is persisted
// (best-effort) and the complete event is emitted last.
//
// # Progress
//
// Every event updates Current, Total and LastProgress in the state before it is handed to the
// [Emitter]. Emission never blocks the run: [ChannelEmitter] drops events when its buffer is full,
// and delivery errors are only logged.
//
// # Failure
//
// Cancelling the run's context or a panic inside the loop ends the run in the failed phase with a
// terse message and an error event. No partial result is produced.
package tasks
