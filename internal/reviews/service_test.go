package reviews_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech1bro/cinescope-backend/internal/aggregate"
	"github.com/tech1bro/cinescope-backend/internal/movies"
	"github.com/tech1bro/cinescope-backend/internal/reviews"
	"github.com/tech1bro/cinescope-backend/internal/store"
	"github.com/tech1bro/cinescope-backend/internal/testdb"
	"github.com/tech1bro/cinescope-backend/internal/tmdb"
	"github.com/tech1bro/cinescope-backend/internal/validate"
)

func setup(t *testing.T) (*store.Store, *reviews.Service) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/movie/603" {
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 603, "title": "The Matrix"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	client, err := tmdb.New("test-key", srv.URL)
	require.NoError(t, err)

	s := store.New(testdb.New(t))
	movieSvc := movies.New(s, client)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return s, reviews.New(s, movieSvc, aggregate.New(s), log)
}

func TestCreateMirrorsMovieAndRecomputes(t *testing.T) {
	ctx := context.Background()
	s, svc := setup(t)

	r, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 8, Title: "Great", Content: "Loved it"})
	require.NoError(t, err)
	assert.NotZero(t, r.ID)
	assert.False(t, r.IsEdited)

	m, err := s.GetMovieByTMDBID(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, 8.0, m.LocalRating.Average)
	assert.Equal(t, int64(1), m.LocalRating.Count)
}

func TestCreateDuplicateFailsRegardlessOfOtherUsers(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	_, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 8, Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "userB", reviews.CreateInput{TMDBID: 603, Rating: 6, Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 9, Title: "again", Content: "again"})
	assert.ErrorIs(t, err, reviews.ErrAlreadyExists)
}

func TestCreateFetchFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	s, svc := setup(t)

	_, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 42, Rating: 8, Title: "t", Content: "c"})
	assert.ErrorIs(t, err, tmdb.ErrNotFound)

	// Neither the movie nor the review was persisted.
	_, err = s.GetMovieByTMDBID(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	out, err := s.ListReviewsByUser(ctx, "userA", 10)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	var verr *validate.Error
	_, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 11, Title: "t", Content: "c"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "rating")

	_, err = svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 5, Title: "", Content: "c"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
}

func TestUpdateOwnershipAndRecompute(t *testing.T) {
	ctx := context.Background()
	s, svc := setup(t)

	ra, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 8, Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "userB", reviews.CreateInput{TMDBID: 603, Rating: 6, Title: "t", Content: "c"})
	require.NoError(t, err)

	m, _ := s.GetMovieByTMDBID(ctx, 603)
	require.Equal(t, 7.0, m.LocalRating.Average)

	_, err = svc.Update(ctx, "userB", ra.ID, reviews.UpdateInput{})
	assert.ErrorIs(t, err, reviews.ErrForbidden)

	newRating := 10
	updated, err := svc.Update(ctx, "userA", ra.ID, reviews.UpdateInput{Rating: &newRating})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Rating)
	assert.True(t, updated.IsEdited)
	assert.NotNil(t, updated.EditedAt)

	m, _ = s.GetMovieByTMDBID(ctx, 603)
	assert.Equal(t, 8.0, m.LocalRating.Average)
	assert.Equal(t, int64(2), m.LocalRating.Count)
}

func TestDeleteRecomputesFromRemainingSet(t *testing.T) {
	ctx := context.Background()
	s, svc := setup(t)

	ra, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 10, Title: "t", Content: "c"})
	require.NoError(t, err)
	rb, err := svc.Create(ctx, "userB", reviews.CreateInput{TMDBID: 603, Rating: 6, Title: "t", Content: "c"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "userA", rb.ID), reviews.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "userB", rb.ID))

	m, _ := s.GetMovieByTMDBID(ctx, 603)
	assert.Equal(t, 10.0, m.LocalRating.Average)
	assert.Equal(t, int64(1), m.LocalRating.Count)

	require.NoError(t, svc.Delete(ctx, "userA", ra.ID))
	m, _ = s.GetMovieByTMDBID(ctx, 603)
	assert.Equal(t, 0.0, m.LocalRating.Average)
	assert.Equal(t, int64(0), m.LocalRating.Count)

	assert.ErrorIs(t, svc.Delete(ctx, "userA", ra.ID), reviews.ErrNotFound)
}

func TestDeleteLikedReview(t *testing.T) {
	ctx := context.Background()
	s, svc := setup(t)

	r, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 8, Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Like(ctx, "userB", r.ID)
	require.NoError(t, err)

	// Likes from other users must not pin the review in place.
	require.NoError(t, svc.Delete(ctx, "userA", r.ID))

	_, err = s.GetReview(ctx, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	m, err := s.GetMovieByTMDBID(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.LocalRating.Average)
	assert.Equal(t, int64(0), m.LocalRating.Count)
}

func TestLikeTwiceFails(t *testing.T) {
	ctx := context.Background()
	s, svc := setup(t)

	r, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 8, Title: "t", Content: "c"})
	require.NoError(t, err)

	n, err := svc.Like(ctx, "userB", r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Like(ctx, "userB", r.ID)
	assert.ErrorIs(t, err, reviews.ErrAlreadyLiked)

	stored, err := s.GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.LikesCount)
}

func TestUnlikeAbsentIsNoOp(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	r, err := svc.Create(ctx, "userA", reviews.CreateInput{TMDBID: 603, Rating: 8, Title: "t", Content: "c"})
	require.NoError(t, err)

	n, err := svc.Unlike(ctx, "userB", r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = svc.Like(ctx, "userB", r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Unlike(ctx, "userB", r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestLikeUnknownReview(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)
	_, err := svc.Like(ctx, "userB", 9999)
	assert.ErrorIs(t, err, reviews.ErrNotFound)
}
