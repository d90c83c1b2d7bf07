package activity

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tech1bro/cinescope-backend/internal/models"
	"github.com/tech1bro/cinescope-backend/internal/store"
)

const (
	ActionAddedToWatchlist = "added_to_watchlist"
	ActionWatched          = "watched"
	ActionAddedToFavorites = "added_to_favorites"
	ActionReviewed         = "reviewed"
)

// Event is one entry in a user's merged activity feed.
type Event struct {
	Type   string       `json:"type"`
	Action string       `json:"action"`
	Movie  models.Movie `json:"movie"`
	Date   time.Time    `json:"date"`
	Data   any          `json:"data"`
}

// Aggregator merges the per-feature collections into one time-ordered feed.
// Read-only; the three store reads are independent and run concurrently.
type Aggregator struct {
	Store *store.Store
}

func New(s *store.Store) *Aggregator { return &Aggregator{Store: s} }

// precedence breaks timestamp ties deterministically: watchlist, then
// favorite, then review.
var precedence = map[string]int{"watchlist": 0, "favorite": 1, "review": 2}

// Recent returns the user's limit most-recent events across all three
// collections. A watched entry surfaces as "watched" dated at watched_at;
// everything else is dated at creation.
func (a *Aggregator) Recent(ctx context.Context, userID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		entries   []models.WatchlistEntry
		favorites []models.Favorite
		revs      []models.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		entries, err = a.Store.ListWatchlistByUser(gctx, userID, limit)
		return err
	})
	g.Go(func() (err error) {
		favorites, err = a.Store.ListFavoritesByUser(gctx, userID, limit)
		return err
	})
	g.Go(func() (err error) {
		revs, err = a.Store.ListReviewsByUser(gctx, userID, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(entries)+len(favorites)+len(revs))
	for _, e := range entries {
		ev := Event{Type: "watchlist", Action: ActionAddedToWatchlist, Movie: e.Movie, Date: e.CreatedAt, Data: e}
		if e.Watched && e.WatchedAt != nil {
			ev.Action = ActionWatched
			ev.Date = *e.WatchedAt
		}
		events = append(events, ev)
	}
	for _, f := range favorites {
		events = append(events, Event{Type: "favorite", Action: ActionAddedToFavorites, Movie: f.Movie, Date: f.CreatedAt, Data: f})
	}
	for _, r := range revs {
		events = append(events, Event{Type: "review", Action: ActionReviewed, Movie: r.Movie, Date: r.CreatedAt, Data: r})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.After(events[j].Date)
		}
		return precedence[events[i].Type] < precedence[events[j].Type]
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
