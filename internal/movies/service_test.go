package movies_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech1bro/cinescope-backend/internal/models"
	"github.com/tech1bro/cinescope-backend/internal/movies"
	"github.com/tech1bro/cinescope-backend/internal/store"
	"github.com/tech1bro/cinescope-backend/internal/testdb"
	"github.com/tech1bro/cinescope-backend/internal/tmdb"
)

// fakeTMDB serves /movie/603 and counts hits; everything else is a 404 in
// TMDB's shape.
func fakeTMDB(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/movie/603" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"status_code": 34, "status_message": "not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           603,
			"title":        "The Matrix",
			"overview":     "A hacker discovers reality.",
			"release_date": "1999-03-31",
			"runtime":      136,
			"genres":       []map[string]any{{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}},
			"vote_average": 8.2,
			"vote_count":   24000,
			"popularity":   85.1,
		})
	}))
}

func setup(t *testing.T) (*store.Store, *movies.Service, *atomic.Int64) {
	var hits atomic.Int64
	srv := fakeTMDB(t, &hits)
	t.Cleanup(srv.Close)
	client, err := tmdb.New("test-key", srv.URL)
	require.NoError(t, err)
	s := store.New(testdb.New(t))
	return s, movies.New(s, client), &hits
}

func TestGetOrCreateFetchesOnMiss(t *testing.T) {
	ctx := context.Background()
	s, svc, hits := setup(t)

	m, err := svc.GetOrCreate(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, int64(603), m.TMDBID)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, 136, m.Runtime)
	require.Len(t, m.Genres, 2)
	assert.Equal(t, "Action", m.Genres[0].Name)
	require.NotNil(t, m.ReleaseDate)
	assert.Equal(t, int64(1), hits.Load())

	// Persisted, not just returned.
	stored, err := s.GetMovieByTMDBID(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", stored.Title)
}

func TestGetOrCreateIdempotent(t *testing.T) {
	ctx := context.Background()
	s, svc, hits := setup(t)

	first, err := svc.GetOrCreate(ctx, 603)
	require.NoError(t, err)

	// Local aggregate state accrues between calls.
	require.NoError(t, s.SetLocalRating(ctx, 603, 7.5, 4))
	require.NoError(t, s.AddWatchlistCount(ctx, 603, 2))

	second, err := svc.GetOrCreate(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, first.TMDBID, second.TMDBID)
	assert.Equal(t, 7.5, second.LocalRating.Average)
	assert.Equal(t, int64(4), second.LocalRating.Count)
	assert.Equal(t, int64(2), second.WatchlistCount)
	assert.Equal(t, int64(1), hits.Load(), "second call must not re-fetch")
}

func TestGetOrCreateNotFoundLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	s, svc, _ := setup(t)

	_, err := svc.GetOrCreate(ctx, 999999)
	assert.ErrorIs(t, err, tmdb.ErrNotFound)

	_, err = s.GetMovieByTMDBID(ctx, 999999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetOrCreateUpstreamFailureLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client, err := tmdb.New("test-key", srv.URL)
	require.NoError(t, err)
	s := store.New(testdb.New(t))
	svc := movies.New(s, client)

	_, err = svc.GetOrCreate(ctx, 603)
	assert.ErrorIs(t, err, tmdb.ErrUnavailable)

	_, err = s.GetMovieByTMDBID(ctx, 603)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshOverwritesDetailsKeepsAggregates(t *testing.T) {
	ctx := context.Background()
	s, svc, hits := setup(t)

	require.NoError(t, s.UpsertMovieDetails(ctx, &models.Movie{TMDBID: 603, Title: "stale title"}))
	require.NoError(t, s.SetLocalRating(ctx, 603, 9.0, 3))

	m, err := svc.Refresh(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, 9.0, m.LocalRating.Average)
	assert.Equal(t, int64(3), m.LocalRating.Count)
	assert.Equal(t, int64(1), hits.Load())
}
