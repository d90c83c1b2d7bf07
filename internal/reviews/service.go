package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tech1bro/cinescope-backend/internal/aggregate"
	"github.com/tech1bro/cinescope-backend/internal/models"
	"github.com/tech1bro/cinescope-backend/internal/movies"
	"github.com/tech1bro/cinescope-backend/internal/store"
	"github.com/tech1bro/cinescope-backend/internal/validate"
)

var (
	ErrNotFound      = errors.New("reviews: not found")
	ErrAlreadyExists = errors.New("reviews: already reviewed")
	ErrForbidden     = errors.New("reviews: not the review owner")
	ErrAlreadyLiked  = errors.New("reviews: already liked")
)

type Service struct {
	Store     *store.Store
	Movies    *movies.Service
	Aggregate *aggregate.Engine
	Log       *slog.Logger
}

func New(s *store.Store, m *movies.Service, a *aggregate.Engine, log *slog.Logger) *Service {
	return &Service{Store: s, Movies: m, Aggregate: a, Log: log}
}

type CreateInput struct {
	TMDBID   int64  `json:"tmdb_id" validate:"required,gt=0"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=10"`
	Title    string `json:"title" validate:"required,min=1,max=100"`
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	Spoilers bool   `json:"spoilers"`
}

type UpdateInput struct {
	Rating   *int    `json:"rating" validate:"omitempty,gte=1,lte=10"`
	Title    *string `json:"title" validate:"omitempty,min=1,max=100"`
	Content  *string `json:"content" validate:"omitempty,min=1,max=2000"`
	Spoilers *bool   `json:"spoilers"`
}

// Create mirrors the title first (the whole request fails if the fetch
// does), then persists the review. The duplicate check is the DB's unique
// constraint, not a pre-read.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Review, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	movie, err := s.Movies.GetOrCreate(ctx, in.TMDBID)
	if err != nil {
		return nil, err
	}
	r := &models.Review{
		UserID:   userID,
		MovieID:  movie.ID,
		TMDBID:   in.TMDBID,
		Rating:   in.Rating,
		Title:    in.Title,
		Content:  in.Content,
		Spoilers: in.Spoilers,
	}
	if err := s.Store.CreateReview(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	s.recompute(ctx, in.TMDBID)
	return r, nil
}

// Update applies a partial edit by the owning user. Any edit marks the
// review as edited; only a rating change triggers recomputation.
func (s *Service) Update(ctx context.Context, userID string, reviewID uint, in UpdateInput) (*models.Review, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	r, err := s.Store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}

	now := time.Now()
	fields := map[string]any{"is_edited": true, "edited_at": now}
	ratingChanged := false
	if in.Rating != nil && *in.Rating != r.Rating {
		fields["rating"] = *in.Rating
		ratingChanged = true
	}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Spoilers != nil {
		fields["spoilers"] = *in.Spoilers
	}
	if err := s.Store.UpdateReview(ctx, reviewID, fields); err != nil {
		return nil, err
	}
	if ratingChanged {
		s.recompute(ctx, r.TMDBID)
	}
	return s.Store.GetReview(ctx, reviewID)
}

// Delete removes the owning user's review and recomputes the title's rating
// from whatever set remains.
func (s *Service) Delete(ctx context.Context, userID string, reviewID uint) error {
	r, err := s.Store.GetReview(ctx, reviewID)
	if err != nil {
		return asNotFound(err)
	}
	if r.UserID != userID {
		return ErrForbidden
	}
	if err := s.Store.DeleteReview(ctx, reviewID); err != nil {
		return asNotFound(err)
	}
	s.recompute(ctx, r.TMDBID)
	return nil
}

// Like adds the acting user to the review's like set. A second like by the
// same user is rejected; likes_count is re-counted from the membership
// table, never incremented in place.
func (s *Service) Like(ctx context.Context, userID string, reviewID uint) (int64, error) {
	if _, err := s.Store.GetReview(ctx, reviewID); err != nil {
		return 0, asNotFound(err)
	}
	inserted, err := s.Store.AddReviewLike(ctx, reviewID, userID)
	if err != nil {
		return 0, err
	}
	if !inserted {
		return 0, ErrAlreadyLiked
	}
	return s.syncLikesCount(ctx, reviewID)
}

// Unlike removes the membership if present; unliking an absent like is a
// silent no-op.
func (s *Service) Unlike(ctx context.Context, userID string, reviewID uint) (int64, error) {
	if _, err := s.Store.GetReview(ctx, reviewID); err != nil {
		return 0, asNotFound(err)
	}
	removed, err := s.Store.RemoveReviewLike(ctx, reviewID, userID)
	if err != nil {
		return 0, err
	}
	if !removed {
		return s.Store.CountReviewLikes(ctx, reviewID)
	}
	return s.syncLikesCount(ctx, reviewID)
}

func (s *Service) Get(ctx context.Context, reviewID uint) (*models.Review, error) {
	r, err := s.Store.GetReviewWithMovie(ctx, reviewID)
	if err != nil {
		return nil, asNotFound(err)
	}
	return r, nil
}

func (s *Service) ListByMovie(ctx context.Context, tmdbID int64, limit, offset int) ([]models.Review, error) {
	return s.Store.ListReviewsByTMDBID(ctx, tmdbID, limit, offset)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]models.Review, error) {
	return s.Store.ListReviewsByUser(ctx, userID, limit)
}

// ListRecent is the global feed, newest first.
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]models.Review, error) {
	return s.Store.ListRecentReviews(ctx, limit, offset)
}

func (s *Service) syncLikesCount(ctx context.Context, reviewID uint) (int64, error) {
	n, err := s.Store.CountReviewLikes(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	if err := s.Store.SetReviewLikesCount(ctx, reviewID, n); err != nil {
		return 0, err
	}
	return n, nil
}

// recompute refreshes the movie's local rating. The review mutation has
// already committed, so a failure here is logged and absorbed rather than
// propagated.
func (s *Service) recompute(ctx context.Context, tmdbID int64) {
	if err := s.Aggregate.RecomputeRating(ctx, tmdbID); err != nil {
		s.Log.Error("rating recompute failed", "tmdb_id", tmdbID, "error", err)
	}
}

func asNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
