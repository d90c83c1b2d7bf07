package favorites

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tech1bro/cinescope-backend/internal/aggregate"
	"github.com/tech1bro/cinescope-backend/internal/models"
	"github.com/tech1bro/cinescope-backend/internal/movies"
	"github.com/tech1bro/cinescope-backend/internal/store"
)

var (
	ErrNotFound      = errors.New("favorites: not found")
	ErrAlreadyExists = errors.New("favorites: already a favorite")
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

// Add mirrors the title and records the favorite; create/delete are the
// only mutations on this entity.
func (s *Service) Add(ctx context.Context, userID string, tmdbID int64) (*models.Favorite, error) {
	movie, err := s.Movies.GetOrCreate(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	f := &models.Favorite{UserID: userID, MovieID: movie.ID, TMDBID: tmdbID}
	if err := s.Store.CreateFavorite(ctx, f); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	s.adjust(ctx, tmdbID, +1)
	return f, nil
}

func (s *Service) Remove(ctx context.Context, userID string, tmdbID int64) error {
	if err := s.Store.DeleteFavorite(ctx, userID, tmdbID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.adjust(ctx, tmdbID, -1)
	return nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	return s.Store.ListFavoritesByUser(ctx, userID, 0)
}

func (s *Service) adjust(ctx context.Context, tmdbID int64, delta int) {
	if err := s.Aggregate.AdjustFavoriteCount(ctx, tmdbID, delta); err != nil {
		s.Log.Error("favorite count adjust failed", "tmdb_id", tmdbID, "delta", delta, "error", err)
	}
}
