package aggregate

import (
	"context"
	"math"

	"github.com/tech1bro/cinescope-backend/internal/store"
)

// Engine recomputes the denormalized statistics on a Movie. Every operation
// is idempotent and safe to re-run; callers absorb failures because these
// are secondary views of already-committed mutations.
type Engine struct {
	Store *store.Store
}

func New(s *store.Store) *Engine { return &Engine{Store: s} }

// RecomputeRating re-derives local_rating from the live review set. Full
// recomputation, not an incremental sum: edits and deletes make a running
// total unrecoverable. Under concurrent rating writes the last recompute to
// commit wins, which is self-healing on the next write.
func (e *Engine) RecomputeRating(ctx context.Context, tmdbID int64) error {
	st, err := e.Store.MovieRatingStats(ctx, tmdbID)
	if err != nil {
		return err
	}
	avg := 0.0
	if st.Count > 0 {
		avg = math.Round(st.Average*10) / 10
	}
	return e.Store.SetLocalRating(ctx, tmdbID, avg, st.Count)
}

// AdjustWatchlistCount applies delta (+1 add, -1 remove) as an atomic
// update, floored at zero.
func (e *Engine) AdjustWatchlistCount(ctx context.Context, tmdbID int64, delta int) error {
	return e.Store.AddWatchlistCount(ctx, tmdbID, delta)
}

// AdjustFavoriteCount is the favorite twin of AdjustWatchlistCount.
func (e *Engine) AdjustFavoriteCount(ctx context.Context, tmdbID int64, delta int) error {
	return e.Store.AddFavoriteCount(ctx, tmdbID, delta)
}
