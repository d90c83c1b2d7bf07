package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech1bro/cinescope-backend/internal/activity"
	"github.com/tech1bro/cinescope-backend/internal/models"
	"github.com/tech1bro/cinescope-backend/internal/store"
	"github.com/tech1bro/cinescope-backend/internal/testdb"
)

func setup(t *testing.T) (*store.Store, *activity.Aggregator) {
	s := store.New(testdb.New(t))
	return s, activity.New(s)
}

func seedMovie(t *testing.T, s *store.Store, tmdbID int64, title string) *models.Movie {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertMovieDetails(ctx, &models.Movie{TMDBID: tmdbID, Title: title}))
	m, err := s.GetMovieByTMDBID(ctx, tmdbID)
	require.NoError(t, err)
	return m
}

func at(h int) time.Time {
	return time.Date(2024, 6, 1, h, 0, 0, 0, time.UTC)
}

func TestRecentMergesAndSortsDescending(t *testing.T) {
	ctx := context.Background()
	s, agg := setup(t)
	m1 := seedMovie(t, s, 603, "The Matrix")
	m2 := seedMovie(t, s, 550, "Fight Club")
	m3 := seedMovie(t, s, 680, "Pulp Fiction")

	require.NoError(t, s.CreateWatchlistEntry(ctx, &models.WatchlistEntry{
		UserID: "u1", MovieID: m1.ID, TMDBID: 603, Priority: "medium", CreatedAt: at(9),
	}))
	require.NoError(t, s.CreateFavorite(ctx, &models.Favorite{
		UserID: "u1", MovieID: m2.ID, TMDBID: 550, CreatedAt: at(11),
	}))
	require.NoError(t, s.CreateReview(ctx, &models.Review{
		UserID: "u1", MovieID: m3.ID, TMDBID: 680, Rating: 9, Title: "t", Content: "c", CreatedAt: at(10),
	}))

	events, err := agg.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, activity.ActionAddedToFavorites, events[0].Action)
	assert.Equal(t, "Fight Club", events[0].Movie.Title)
	assert.Equal(t, activity.ActionReviewed, events[1].Action)
	assert.Equal(t, activity.ActionAddedToWatchlist, events[2].Action)
}

func TestRecentUsesWatchedAtForWatchedEntries(t *testing.T) {
	ctx := context.Background()
	s, agg := setup(t)
	m := seedMovie(t, s, 603, "The Matrix")

	watchedAt := at(15)
	require.NoError(t, s.CreateWatchlistEntry(ctx, &models.WatchlistEntry{
		UserID: "u1", MovieID: m.ID, TMDBID: 603, Priority: "medium",
		CreatedAt: at(9), Watched: true, WatchedAt: &watchedAt,
	}))
	m2 := seedMovie(t, s, 550, "Fight Club")
	require.NoError(t, s.CreateFavorite(ctx, &models.Favorite{
		UserID: "u1", MovieID: m2.ID, TMDBID: 550, CreatedAt: at(12),
	}))

	events, err := agg.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, activity.ActionWatched, events[0].Action)
	assert.Equal(t, watchedAt, events[0].Date.UTC())
}

func TestRecentTieBreakIsDeterministic(t *testing.T) {
	ctx := context.Background()
	s, agg := setup(t)
	m := seedMovie(t, s, 603, "The Matrix")

	ts := at(10)
	require.NoError(t, s.CreateReview(ctx, &models.Review{
		UserID: "u1", MovieID: m.ID, TMDBID: 603, Rating: 8, Title: "t", Content: "c", CreatedAt: ts,
	}))
	require.NoError(t, s.CreateFavorite(ctx, &models.Favorite{
		UserID: "u1", MovieID: m.ID, TMDBID: 603, CreatedAt: ts,
	}))
	require.NoError(t, s.CreateWatchlistEntry(ctx, &models.WatchlistEntry{
		UserID: "u1", MovieID: m.ID, TMDBID: 603, Priority: "low", CreatedAt: ts,
	}))

	for i := 0; i < 5; i++ {
		events, err := agg.Recent(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, activity.ActionAddedToWatchlist, events[0].Action)
		assert.Equal(t, activity.ActionAddedToFavorites, events[1].Action)
		assert.Equal(t, activity.ActionReviewed, events[2].Action)
	}
}

func TestRecentTruncatesToLimit(t *testing.T) {
	ctx := context.Background()
	s, agg := setup(t)

	for i := int64(1); i <= 4; i++ {
		m := seedMovie(t, s, i, "movie")
		require.NoError(t, s.CreateWatchlistEntry(ctx, &models.WatchlistEntry{
			UserID: "u1", MovieID: m.ID, TMDBID: i, Priority: "medium", CreatedAt: at(int(i)),
		}))
	}

	events, err := agg.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(4), events[0].Data.(models.WatchlistEntry).TMDBID)
	assert.Equal(t, int64(3), events[1].Data.(models.WatchlistEntry).TMDBID)
}

func TestRecentIgnoresOtherUsers(t *testing.T) {
	ctx := context.Background()
	s, agg := setup(t)
	m := seedMovie(t, s, 603, "The Matrix")

	require.NoError(t, s.CreateFavorite(ctx, &models.Favorite{UserID: "u2", MovieID: m.ID, TMDBID: 603}))

	events, err := agg.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
