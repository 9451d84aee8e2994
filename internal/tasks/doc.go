// Package tasks runs the lyric batch pipeline with real-time progress reporting.
//
// # Pipeline
//
// Each entry moves through an explicit state machine, one typed state per stage:
//
//  1. Pending → Classified : [entries.Classify] turns the raw token into a reference
//  2. Classified → Resolved | Unresolved : [Resolver] binds the reference to a catalog track
//     - track IDs use one detail lookup and never search
//     - free text uses one search scored by a [matcher.Scorer]
//  3. Resolved → Fetched | FetchFailed : [Fetcher] retrieves lyrics under a [RetryPolicy]
//  4. Fetched → Written | WriteSkipped : [Writer] creates the .lrc file, never overwriting
//
// Failures at any stage become the entry's status in the [models.Report]; none abort the batch.
//
// # Pacing
//
// [Engine] wraps its catalog in a [services.PacedCatalog], so every detail, search and lyric request,
// retries included, waits on the same limiter. Retry backoff stacks on top of that spacing.
//
// # Progress Reporting
//
// Every transition is sent to an [Observer]. [ChannelObserver] uses a non-blocking send,
// so a slow consumer drops updates instead of stalling the batch.
//
// # Cancellation
//
// The context is checked between entries. A cancelled batch returns the outcomes collected so far
// with the context error.
package tasks
