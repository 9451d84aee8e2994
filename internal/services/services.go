// package services defines interface Catalog for interacting with the remote music catalog
package services

import (
	"context"

	"github.com/desertthunder/lrcx/internal/models"
)

// Catalog defines the remote operations the lyric pipeline consumes: search, song detail and lyrics.
type Catalog interface {
	// Search returns up to limit candidates for query in the catalog's relevance order.
	Search(ctx context.Context, query string, limit int) ([]models.Candidate, error)

	// Detail returns title and artist metadata for a track ID.
	Detail(ctx context.Context, id int64) (models.Candidate, error)

	// Lyric returns the primary and translated lyric text for a track ID.
	//
	// A structurally valid response without lyrics yields an empty payload and no error.
	Lyric(ctx context.Context, id int64) (models.LyricPayload, error)

	// Name returns the name of the catalog (e.g., "NetEase Cloud Music")
	Name() string
}
