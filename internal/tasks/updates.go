package tasks

import (
	"fmt"

	"github.com/desertthunder/lrcx/internal/models"
)

// ProgressUpdate represents one state transition of a batch entry.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Stage   Stage           // Stage the entry just entered
	Step    int             // 1-based position of the entry
	Total   int             // Total entries in the batch
	Entry   string          // Raw entry text
	Message string          // Human-readable message for display
	Outcome *models.Outcome // Set on terminal stages
}

// Terminal reports whether the update carries the entry's final outcome.
func (u ProgressUpdate) Terminal() bool {
	return u.Outcome != nil
}

// Stage enumerates the per-entry state machine.
type Stage int

const (
	Pending Stage = iota
	Classified
	Resolved
	Unresolved
	Fetched
	FetchFailed
	Written
	WriteSkipped
	WriteFailed
)

func (s Stage) String() string {
	switch s {
	case Pending:
		return "pending"
	case Classified:
		return "classified"
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	case Fetched:
		return "fetched"
	case FetchFailed:
		return "fetch_failed"
	case Written:
		return "written"
	case WriteSkipped:
		return "skipped"
	case WriteFailed:
		return "write_failed"
	default:
		return ""
	}
}

// Observer receives progress updates from the [Engine].
//
// Implementations are called synchronously on the engine goroutine and must not block.
type Observer interface {
	Observe(update ProgressUpdate)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(update ProgressUpdate)

// Observe calls f(update).
func (f ObserverFunc) Observe(update ProgressUpdate) {
	f(update)
}

// ChannelObserver forwards updates to a channel without blocking.
type ChannelObserver chan<- ProgressUpdate

// Observe sends the update, dropping it when the channel is full. Consumers should take final counts from the
// returned [models.Report].
func (c ChannelObserver) Observe(update ProgressUpdate) {
	sendProgress(c, update)
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type multiObserver []Observer

func (m multiObserver) Observe(update ProgressUpdate) {
	for _, o := range m {
		if o != nil {
			o.Observe(update)
		}
	}
}

// Observers combines several observers into one, skipping nil entries.
func Observers(observers ...Observer) Observer {
	return multiObserver(observers)
}

func pendingUpdate(step, total int, entry string) ProgressUpdate {
	return ProgressUpdate{
		Stage:   Pending,
		Step:    step,
		Total:   total,
		Entry:   entry,
		Message: fmt.Sprintf("[%d/%d] Resolving: %s", step, total, entry),
	}
}

func classifiedUpdate(step, total int, entry string, ref models.Reference) ProgressUpdate {
	return ProgressUpdate{
		Stage:   Classified,
		Step:    step,
		Total:   total,
		Entry:   entry,
		Message: fmt.Sprintf("[%d/%d] Classified as %s: %s", step, total, ref.Kind, ref),
	}
}

func resolvedUpdate(step, total int, entry string, track models.ResolvedTrack) ProgressUpdate {
	return ProgressUpdate{
		Stage:   Resolved,
		Step:    step,
		Total:   total,
		Entry:   entry,
		Message: fmt.Sprintf("[%d/%d] Resolved: %s - %s (ID: %d)", step, total, track.Title, track.Artist, track.ID),
	}
}

func fetchedUpdate(step, total int, entry string, attempts int) ProgressUpdate {
	return ProgressUpdate{
		Stage:   Fetched,
		Step:    step,
		Total:   total,
		Entry:   entry,
		Message: fmt.Sprintf("[%d/%d] Fetched lyrics (%d attempt(s))", step, total, attempts),
	}
}

func terminalUpdate(stage Stage, total int, outcome models.Outcome) ProgressUpdate {
	var message string
	switch stage {
	case Written:
		message = fmt.Sprintf("[%d/%d] ✓ %s", outcome.Position, total, outcome.Path)
	case WriteSkipped:
		message = fmt.Sprintf("[%d/%d] = exists: %s", outcome.Position, total, outcome.Path)
	default:
		message = fmt.Sprintf("[%d/%d] ✗ %s: %s", outcome.Position, total, outcome.Entry, outcome.Reason)
	}
	return ProgressUpdate{
		Stage:   stage,
		Step:    outcome.Position,
		Total:   total,
		Entry:   outcome.Entry,
		Message: message,
		Outcome: &outcome,
	}
}
