// Package ui implements the live progress view for batch runs using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [RunView] : Spinner, per-status counters and the most recent outcomes while the batch runs
//  2. [ResultView] : Filterable list of every outcome once the batch finishes or is cancelled
//
// The [Model] starts the batch in a goroutine and receives [tasks.ProgressUpdate] values over a buffered channel
// fed by a [tasks.ChannelObserver], so a slow terminal never stalls the engine. Pressing q or ctrl+c during a run
// cancels it; the partial report is still shown and returned by [Model.Report].
package ui
