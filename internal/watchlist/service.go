package watchlist

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
	ErrNotFound      = errors.New("watchlist: entry not found")
	ErrAlreadyExists = errors.New("watchlist: already on watchlist")
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

type AddInput struct {
	TMDBID   int64  `json:"tmdb_id" validate:"required,gt=0"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Notes    string `json:"notes" validate:"max=500"`
}

type UpdateInput struct {
	Priority *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

// Add mirrors the title and creates the entry; the DB constraint rejects a
// second add by the same user. The counter adjustment runs after the entry
// commits and is absorbed on failure.
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*models.WatchlistEntry, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	movie, err := s.Movies.GetOrCreate(ctx, in.TMDBID)
	if err != nil {
		return nil, err
	}
	e := &models.WatchlistEntry{
		UserID:   userID,
		MovieID:  movie.ID,
		TMDBID:   in.TMDBID,
		Priority: in.Priority,
		Notes:    in.Notes,
	}
	if e.Priority == "" {
		e.Priority = models.PriorityMedium
	}
	if err := s.Store.CreateWatchlistEntry(ctx, e); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	s.adjust(ctx, in.TMDBID, +1)
	return e, nil
}

// Remove deletes the entry and decrements the counter.
func (s *Service) Remove(ctx context.Context, userID string, tmdbID int64) error {
	if err := s.Store.DeleteWatchlistEntry(ctx, userID, tmdbID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.adjust(ctx, tmdbID, -1)
	return nil
}

// SetWatched flips the watched flag; watched_at is present iff watched.
// The watchlist counter counts membership, not watch state, so no
// adjustment happens here.
func (s *Service) SetWatched(ctx context.Context, userID string, tmdbID int64, watched bool) (*models.WatchlistEntry, error) {
	fields := map[string]any{"watched": watched}
	if watched {
		fields["watched_at"] = time.Now()
	} else {
		fields["watched_at"] = nil
	}
	if err := s.Store.UpdateWatchlistEntry(ctx, userID, tmdbID, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Store.GetWatchlistEntry(ctx, userID, tmdbID)
}

// Update edits priority and notes on the user's own entry.
func (s *Service) Update(ctx context.Context, userID string, tmdbID int64, in UpdateInput) (*models.WatchlistEntry, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Priority != nil {
		fields["priority"] = *in.Priority
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if len(fields) == 0 {
		return s.get(ctx, userID, tmdbID)
	}
	if err := s.Store.UpdateWatchlistEntry(ctx, userID, tmdbID, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.get(ctx, userID, tmdbID)
}

func (s *Service) List(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	return s.Store.ListWatchlistByUser(ctx, userID, 0)
}

func (s *Service) get(ctx context.Context, userID string, tmdbID int64) (*models.WatchlistEntry, error) {
	e, err := s.Store.GetWatchlistEntry(ctx, userID, tmdbID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *Service) adjust(ctx context.Context, tmdbID int64, delta int) {
	if err := s.Aggregate.AdjustWatchlistCount(ctx, tmdbID, delta); err != nil {
		s.Log.Error("watchlist count adjust failed", "tmdb_id", tmdbID, "delta", delta, "error", err)
	}
}
