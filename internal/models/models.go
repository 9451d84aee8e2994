// package models defines the data model for the lyric batch pipeline
package models

import (
	"fmt"
	"strings"
	"time"
)

// ReferenceKind tags the variant held by a [Reference].
type ReferenceKind int

const (
	TrackID ReferenceKind = iota
	FreeText
)

func (k ReferenceKind) String() string {
	switch k {
	case TrackID:
		return "id"
	case FreeText:
		return "text"
	default:
		return "unknown"
	}
}

// Reference is a classified input entry: either a catalog track ID or a free-text query.
type Reference struct {
	Kind   ReferenceKind `json:"kind"`
	ID     int64         `json:"id,omitempty"`     // set when Kind is TrackID
	Title  string        `json:"title,omitempty"`  // set when Kind is FreeText
	Artist string        `json:"artist,omitempty"` // empty when absent
}

// Query returns the search string for a free-text reference.
func (r Reference) Query() string {
	return strings.TrimSpace(r.Title + " " + r.Artist)
}

func (r Reference) String() string {
	if r.Kind == TrackID {
		return fmt.Sprintf("id:%d", r.ID)
	}
	if r.Artist == "" {
		return r.Title
	}
	return r.Title + " - " + r.Artist
}

// Candidate is a single search hit returned by the catalog.
type Candidate struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"` // artist names joined with " & "
	Album      string `json:"album,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// Resolution sources
const (
	SourceID     = "id"
	SourceSearch = "search"
)

// ResolvedTrack is a reference bound to a concrete catalog track.
type ResolvedTrack struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Score  float64 `json:"score,omitempty"` // zero for ID references
	Source string  `json:"source"`
}

// PlaceholderTrack returns the track used when an ID reference has no usable metadata.
func PlaceholderTrack(id int64) ResolvedTrack {
	return ResolvedTrack{
		ID:     id,
		Title:  fmt.Sprintf("song-%d", id),
		Artist: "unknown",
		Source: SourceID,
	}
}

// LyricPayload holds the lyric text retrieved for one track.
type LyricPayload struct {
	Primary    string `json:"primary"`
	Translated string `json:"translated,omitempty"`
}

// IsEmpty reports whether neither text carries any content.
func (p LyricPayload) IsEmpty() bool {
	return strings.TrimSpace(p.Primary) == "" && strings.TrimSpace(p.Translated) == ""
}

// Status is the terminal state of a batch entry.
type Status string

const (
	StatusWritten     Status = "written"
	StatusUnresolved  Status = "unresolved"
	StatusFetchFailed Status = "fetch_failed"
	StatusSkipped     Status = "skipped"
	StatusWriteFailed Status = "write_failed"
)

// Outcome records what happened to one entry.
type Outcome struct {
	Position  int            `json:"position"`
	Entry     string         `json:"entry"`
	Reference Reference      `json:"reference"`
	Track     *ResolvedTrack `json:"track,omitempty"`
	Status    Status         `json:"status"`
	Path      string         `json:"path,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Attempts  int            `json:"attempts,omitempty"`
}

// Report is the ordered result of one batch run.
type Report struct {
	RunID      string    `json:"run_id"`
	OutDir     string    `json:"outdir"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Cancelled  bool      `json:"cancelled,omitempty"`
	Total      int       `json:"total"` // entries submitted, including any abandoned by cancellation
	Outcomes   []Outcome `json:"outcomes"`
}

// Add appends an outcome in processing order.
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Count returns the number of outcomes with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the number of entries that resolved but produced no file.
func (r *Report) Failed() int {
	return r.Count(StatusFetchFailed) + r.Count(StatusWriteFailed)
}

// Pending returns the number of entries abandoned before processing.
func (r *Report) Pending() int {
	return r.Total - len(r.Outcomes)
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunSummary is a persisted batch run as listed by the history command.
type RunSummary struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	OutDir     string     `json:"outdir"`
	Total      int        `json:"total"`
	Written    int        `json:"written"`
	Skipped    int        `json:"skipped"`
	Unresolved int        `json:"unresolved"`
	Failed     int        `json:"failed"`
	Cancelled  bool       `json:"cancelled"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
