package services

import (
	"context"

	"github.com/desertthunder/traxyt/internal/models"
)

// Searcher looks up videos on a video platform for a free-text query.
type Searcher interface {
	// Candidates returns the admissible videos for query, in page order.
	// Errors wrap the shared search sentinels.
	Candidates(ctx context.Context, query string) ([]models.VideoCandidate, error)

	// Resolve picks one video for query, preferring the duration closest to target seconds.
	// A target of zero takes the first candidate. Any failure is logged and reported as nil.
	Resolve(ctx context.Context, query string, target int) *models.VideoCandidate

	// Name returns the name of the platform (e.g., "YouTube")
	Name() string
}

var _ Searcher = (*SearchService)(nil)
