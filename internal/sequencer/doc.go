// Package sequencer drives the scripted zone analysis: a fixed five-step walk
// that assigns cell states to a hardcoded subset of grid zones on a timer.
//
// The sequence is illustrative only. Nothing it does depends on data; every
// run produces the same snapshots in the same order.
//
// # State Machine
//
//	Step 1 (idle)       all zones inactive
//	Step 2 (searching)  subset selecting, every other zone searching
//	Step 3 (comparing)  subset comparing, rest inactive
//	Step 4 (merging)    subset merging, rest inactive
//	Step 5 (complete)   subset complete, rest inactive; terminal
//
// Start resets to step 1 and immediately enters step 2. Each later transition
// is triggered only by the hold timer of the previous step, so steps can never
// be skipped, repeated or reversed within a run.
//
// # Cancellation
//
// Cancel stops the pending timer and bumps the run generation. A timer callback
// that was already in flight sees a stale generation and does nothing. Once
// Cancel returns no observer is notified and no state changes until the next
// Start.
//
// # Thread-Safety
//
// All methods are safe for concurrent use. Observers are called one at a time,
// outside the state lock, and may call Snapshot. They must not call Start,
// Restart or Cancel.
package sequencer
