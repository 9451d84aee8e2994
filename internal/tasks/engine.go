package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lrcx/internal/entries"
	"github.com/desertthunder/lrcx/internal/matcher"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/services"
	"github.com/desertthunder/lrcx/internal/shared"
)

// EngineOpts configures an [Engine].
type EngineOpts struct {
	Catalog     services.Catalog // wrapped in a [services.PacedCatalog] using Sleep
	Scorer      matcher.Scorer   // nil uses default weights in fuzzy mode
	Sleep       time.Duration    // minimum spacing between catalog calls
	Retries     int
	Backoff     time.Duration
	SearchLimit int
	OutDir      string
	Translation string
	Logger      *log.Logger
	Observer    Observer
}

// Engine runs a batch of entries through classify, resolve, fetch and write, one entry at a time.
type Engine struct {
	resolver *Resolver
	fetcher  *Fetcher
	writer   *Writer
	logger   *log.Logger
	observer Observer
}

// NewEngine creates an [Engine]. Resolver and fetcher share one paced catalog, so pacing spans the whole batch.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	catalog := services.NewPacedCatalog(opts.Catalog, opts.Sleep)
	return &Engine{
		resolver: NewResolver(catalog, opts.Scorer, opts.SearchLimit, opts.Logger),
		fetcher:  NewFetcher(catalog, RetryPolicy{Retries: opts.Retries, Backoff: opts.Backoff}, opts.Logger),
		writer:   NewWriter(opts.OutDir, opts.Translation),
		logger:   opts.Logger,
		observer: opts.Observer,
	}
}

func (e *Engine) notify(update ProgressUpdate) {
	if e.observer != nil {
		e.observer.Observe(update)
	}
}

// Run processes raw entries in order and returns the batch report.
//
// Entry failures are recorded in the report and never stop the batch. Failing to create the output directory,
// or an empty batch, is returned before any entry runs. When ctx is cancelled the remaining entries are abandoned
// and the partial report is returned together with the context error.
func (e *Engine) Run(ctx context.Context, raw []string) (*models.Report, error) {
	if len(raw) == 0 {
		return nil, shared.ErrNoEntries
	}
	if err := e.writer.Prepare(); err != nil {
		return nil, err
	}

	report := &models.Report{
		RunID:     shared.GenerateID(),
		OutDir:    e.writer.Dir(),
		StartedAt: time.Now(),
		Total:     len(raw),
		Outcomes:  make([]models.Outcome, 0, len(raw)),
	}

	total := len(raw)
	for i, entry := range raw {
		if err := ctx.Err(); err != nil {
			return e.finish(report, err)
		}

		outcome, cause := e.process(ctx, pendingEntry{position: i + 1, total: total, raw: entry})

		if err := ctx.Err(); err != nil && errors.Is(cause, err) {
			e.logger.Debug("abandoning entry interrupted by cancellation", "entry", entry)
			return e.finish(report, err)
		}
		report.Add(outcome)
	}

	return e.finish(report, nil)
}

func (e *Engine) finish(report *models.Report, err error) (*models.Report, error) {
	report.FinishedAt = time.Now()
	if err != nil {
		report.Cancelled = true
		e.logger.Warn("batch cancelled", "processed", len(report.Outcomes), "pending", report.Pending())
		return report, fmt.Errorf("batch cancelled: %w", err)
	}
	e.logger.Info("batch complete",
		"written", report.Count(models.StatusWritten),
		"skipped", report.Count(models.StatusSkipped),
		"unresolved", report.Count(models.StatusUnresolved),
		"failed", report.Failed())
	return report, nil
}

type pendingEntry struct {
	position int
	total    int
	raw      string
}

type classifiedEntry struct {
	pendingEntry
	ref models.Reference
}

type resolvedEntry struct {
	classifiedEntry
	track models.ResolvedTrack
}

type fetchedEntry struct {
	resolvedEntry
	payload  models.LyricPayload
	attempts int
}

// process drives one entry through the state machine and returns its terminal outcome, along with the error
// that ended it when resolution or retrieval failed.
func (e *Engine) process(ctx context.Context, p pendingEntry) (models.Outcome, error) {
	e.notify(pendingUpdate(p.position, p.total, p.raw))

	c := e.classify(p)
	e.notify(classifiedUpdate(p.position, p.total, p.raw, c.ref))

	r, err := e.resolve(ctx, c)
	if err != nil {
		return e.terminate(Unresolved, models.Outcome{
			Position:  p.position,
			Entry:     p.raw,
			Reference: c.ref,
			Status:    models.StatusUnresolved,
			Reason:    err.Error(),
		}, p.total), err
	}
	e.notify(resolvedUpdate(p.position, p.total, p.raw, r.track))

	f, err := e.fetch(ctx, r)
	if err != nil {
		track := r.track
		return e.terminate(FetchFailed, models.Outcome{
			Position:  p.position,
			Entry:     p.raw,
			Reference: c.ref,
			Track:     &track,
			Status:    models.StatusFetchFailed,
			Reason:    err.Error(),
			Attempts:  f.attempts,
		}, p.total), err
	}
	e.notify(fetchedUpdate(p.position, p.total, p.raw, f.attempts))

	return e.write(f), nil
}

func (e *Engine) classify(p pendingEntry) classifiedEntry {
	return classifiedEntry{pendingEntry: p, ref: entries.Classify(p.raw)}
}

func (e *Engine) resolve(ctx context.Context, c classifiedEntry) (resolvedEntry, error) {
	track, err := e.resolver.Resolve(ctx, c.ref)
	if err != nil {
		e.logger.Debug("unresolved", "entry", c.raw, "error", err)
		return resolvedEntry{classifiedEntry: c}, err
	}
	e.logger.Debug("resolved", "entry", c.raw, "id", track.ID, "source", track.Source, "score", track.Score)
	return resolvedEntry{classifiedEntry: c, track: track}, nil
}

func (e *Engine) fetch(ctx context.Context, r resolvedEntry) (fetchedEntry, error) {
	payload, attempts, err := e.fetcher.Fetch(ctx, r.track)
	if err != nil {
		e.logger.Debug("fetch failed", "id", r.track.ID, "attempts", attempts, "error", err)
	}
	return fetchedEntry{resolvedEntry: r, payload: payload, attempts: attempts}, err
}

func (e *Engine) write(f fetchedEntry) models.Outcome {
	track := f.track
	outcome := models.Outcome{
		Position:  f.position,
		Entry:     f.raw,
		Reference: f.ref,
		Track:     &track,
		Attempts:  f.attempts,
	}

	path, skipped, err := e.writer.Write(f.track, f.payload)
	outcome.Path = path
	switch {
	case err != nil:
		outcome.Status = models.StatusWriteFailed
		outcome.Reason = err.Error()
		return e.terminate(WriteFailed, outcome, f.total)
	case skipped:
		outcome.Status = models.StatusSkipped
		outcome.Reason = shared.ErrFileExists.Error()
		return e.terminate(WriteSkipped, outcome, f.total)
	default:
		outcome.Status = models.StatusWritten
		return e.terminate(Written, outcome, f.total)
	}
}

func (e *Engine) terminate(stage Stage, outcome models.Outcome, total int) models.Outcome {
	switch stage {
	case Written:
		e.logger.Info("written", "entry", outcome.Entry, "path", outcome.Path)
	case WriteSkipped:
		e.logger.Info("skipped existing file", "entry", outcome.Entry, "path", outcome.Path)
	default:
		e.logger.Warn(stage.String(), "entry", outcome.Entry, "reason", outcome.Reason)
	}
	e.notify(terminalUpdate(stage, total, outcome))
	return outcome
}

// IsCancelled reports whether err came from a cancelled or expired batch context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
