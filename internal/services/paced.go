package services

import (
	"context"
	"time"

	"github.com/desertthunder/lrcx/internal/models"
	"golang.org/x/time/rate"
)

// Pacer is implemented by catalogs that space their calls. Interval is zero when pacing is disabled.
type Pacer interface {
	Interval() time.Duration
}

// PacedCatalog wraps a [Catalog] and spaces every call by at least the configured interval.
type PacedCatalog struct {
	next     Catalog
	limiter  *rate.Limiter
	interval time.Duration
}

// NewPacedCatalog creates a [PacedCatalog] allowing one call per interval with a burst of one.
//
// A non-positive interval disables pacing.
func NewPacedCatalog(next Catalog, interval time.Duration) *PacedCatalog {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	} else {
		interval = 0
	}
	return &PacedCatalog{next: next, limiter: rate.NewLimiter(limit, 1), interval: interval}
}

// Interval returns the minimum spacing between calls.
func (p *PacedCatalog) Interval() time.Duration {
	return p.interval
}

// wait blocks until the limiter admits a call. A cancelled ctx is reported as ctx.Err().
func (p *PacedCatalog) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Name returns the wrapped catalog's name.
func (p *PacedCatalog) Name() string {
	return p.next.Name()
}

func (p *PacedCatalog) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Search(ctx, query, limit)
}

func (p *PacedCatalog) Detail(ctx context.Context, id int64) (models.Candidate, error) {
	if err := p.wait(ctx); err != nil {
		return models.Candidate{}, err
	}
	return p.next.Detail(ctx, id)
}

func (p *PacedCatalog) Lyric(ctx context.Context, id int64) (models.LyricPayload, error) {
	if err := p.wait(ctx); err != nil {
		return models.LyricPayload{}, err
	}
	return p.next.Lyric(ctx, id)
}
