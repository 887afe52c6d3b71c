// Package pipeline drives one fetch run: it pops asset ids from a pending
// stack, fetches their metadata with at most F requests in flight, classifies
// each outcome, and hands image-bearing assets to the download dispatcher.
//
// Fetch tasks report back over a single channel that only the orchestrator
// reads, so the pending stack has exactly one owner. Under the default
// on-miss policy a slot is refilled only when its outcome was rejected or
// failed; a valid outcome retires the slot. The always policy refills on
// every outcome.
//
// Coordinator races an interrupt against completion of the whole run. The
// first of the two wins; on interrupt the shared context is cancelled and the
// caller receives the results gathered up to that point.
package pipeline
