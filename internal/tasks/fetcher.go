package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/services"
	"github.com/desertthunder/lrcx/internal/shared"
)

// RetryPolicy bounds lyric retrieval: Retries additional attempts, waiting Backoff × attempt between them.
// Against a paced catalog the backoff is added to the pacing interval.
type RetryPolicy struct {
	Retries int
	Backoff time.Duration
}

// Attempts returns the maximum number of requests the policy allows.
func (p RetryPolicy) Attempts() int {
	if p.Retries < 0 {
		return 1
	}
	return p.Retries + 1
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Backoff <= 0 {
		return 0
	}
	return p.Backoff * time.Duration(attempt)
}

// Fetcher retrieves lyrics for resolved tracks with retry and linear backoff.
type Fetcher struct {
	catalog services.Catalog
	policy  RetryPolicy
	logger  *log.Logger
}

// NewFetcher creates a [Fetcher].
func NewFetcher(catalog services.Catalog, policy RetryPolicy, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Fetcher{catalog: catalog, policy: policy, logger: logger}
}

// Fetch requests lyrics for track until a non-empty payload arrives or the policy is exhausted.
//
// Transport errors, error statuses and empty payloads are all retried. It returns the number of attempts made.
// When every attempt failed the error wraps [shared.ErrNoLyrics] if the last attempt returned an empty payload,
// and [shared.ErrFetchFailed] otherwise. A cancelled context stops further attempts. An error wrapping
// [shared.ErrNoLyrics] from the catalog is final and returned as is.
func (f *Fetcher) Fetch(ctx context.Context, track models.ResolvedTrack) (models.LyricPayload, int, error) {
	var lastErr error
	limit := f.policy.Attempts()

	attempt := 0
	for attempt < limit {
		attempt++

		payload, err := f.catalog.Lyric(ctx, track.ID)
		if err == nil && !payload.IsEmpty() {
			return payload, attempt, nil
		}
		if errors.Is(err, shared.ErrNoLyrics) {
			f.logger.Debug("catalog reports no lyrics", "id", track.ID, "attempt", attempt)
			return models.LyricPayload{}, attempt, err
		}
		lastErr = err

		if err != nil {
			f.logger.Debug("lyric request failed", "id", track.ID, "attempt", attempt, "error", err)
		} else {
			f.logger.Debug("lyric payload empty", "id", track.ID, "attempt", attempt)
		}

		if ctx.Err() != nil {
			return models.LyricPayload{}, attempt, fmt.Errorf("%w: %w", shared.ErrFetchFailed, ctx.Err())
		}
		if attempt == limit {
			break
		}

		if delay := f.retryDelay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return models.LyricPayload{}, attempt, fmt.Errorf("%w: %w", shared.ErrFetchFailed, ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	if lastErr == nil {
		return models.LyricPayload{}, attempt, shared.ErrNoLyrics
	}
	return models.LyricPayload{}, attempt, fmt.Errorf("%w: %v", shared.ErrFetchFailed, lastErr)
}

// retryDelay is the wait after a failed attempt, stacked on top of the catalog's pacing interval.
func (f *Fetcher) retryDelay(attempt int) time.Duration {
	delay := f.policy.Delay(attempt)
	if delay <= 0 {
		return 0
	}
	if p, ok := f.catalog.(services.Pacer); ok {
		delay += p.Interval()
	}
	return delay
}
