package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lrcx/internal/matcher"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/services"
	"github.com/desertthunder/lrcx/internal/shared"
)

const defaultSearchLimit = 10

// Resolver binds references to concrete catalog tracks.
type Resolver struct {
	catalog services.Catalog
	scorer  matcher.Scorer
	limit   int
	logger  *log.Logger
}

// NewResolver creates a [Resolver]. A nil scorer uses [matcher.DefaultWeights] in fuzzy mode.
func NewResolver(catalog services.Catalog, scorer matcher.Scorer, limit int, logger *log.Logger) *Resolver {
	if scorer == nil {
		scorer = matcher.NewScorer(matcher.DefaultWeights(), true)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Resolver{catalog: catalog, scorer: scorer, limit: limit, logger: logger}
}

// Resolve turns ref into a [models.ResolvedTrack].
//
// Track IDs always resolve: metadata comes from one detail lookup, and placeholders stand in when it fails.
// Free text issues one search and accepts the best candidate only when it clears the scorer's threshold;
// otherwise the error wraps [shared.ErrResolutionFailed].
func (r *Resolver) Resolve(ctx context.Context, ref models.Reference) (models.ResolvedTrack, error) {
	if ref.Kind == models.TrackID {
		return r.resolveID(ctx, ref.ID), nil
	}

	matches, err := r.Rank(ctx, ref)
	if err != nil {
		return models.ResolvedTrack{}, err
	}

	best, ok := matcher.Pick(matches, r.scorer.Threshold())
	if best.Position < 0 {
		return models.ResolvedTrack{}, fmt.Errorf("%w: no search results for %q", shared.ErrResolutionFailed, ref.Query())
	}

	r.logger.Debug("best candidate", "query", ref.Query(), "id", best.Candidate.ID,
		"title", best.Candidate.Title, "artist", best.Candidate.Artist, "score", best.Score)

	if !ok {
		return models.ResolvedTrack{}, fmt.Errorf("%w: best candidate %q scored %.1f, below threshold %.1f",
			shared.ErrResolutionFailed, best.Candidate.Title, best.Score, r.scorer.Threshold())
	}

	return models.ResolvedTrack{
		ID:     best.Candidate.ID,
		Title:  best.Candidate.Title,
		Artist: best.Candidate.Artist,
		Score:  best.Score,
		Source: models.SourceSearch,
	}, nil
}

// Rank searches the catalog for a free-text reference and scores every candidate in search order.
func (r *Resolver) Rank(ctx context.Context, ref models.Reference) ([]matcher.Match, error) {
	query := ref.Query()
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", shared.ErrResolutionFailed)
	}

	candidates, err := r.catalog.Search(ctx, query, r.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", shared.ErrResolutionFailed, shared.ErrSearchFailed, err)
	}
	return matcher.Rank(r.scorer, ref, candidates), nil
}

func (r *Resolver) resolveID(ctx context.Context, id int64) models.ResolvedTrack {
	track := models.PlaceholderTrack(id)

	detail, err := r.catalog.Detail(ctx, id)
	if err != nil {
		r.logger.Warn("song detail unavailable, using placeholder", "id", id, "error", err)
		return track
	}

	if detail.Title != "" {
		track.Title = detail.Title
	}
	if detail.Artist != "" {
		track.Artist = detail.Artist
	}
	return track
}
