package movies

import (
	"context"
	"errors"
	"time"

	"github.com/tech1bro/cinescope-backend/internal/models"
	"github.com/tech1bro/cinescope-backend/internal/store"
	"github.com/tech1bro/cinescope-backend/internal/tmdb"
)

// Service is the cache-aside mirror of TMDB titles. Titles are created on
// first reference and never deleted here.
type Service struct {
	Store *store.Store
	TMDB  *tmdb.Client
}

func New(s *store.Store, c *tmdb.Client) *Service { return &Service{Store: s, TMDB: c} }

// GetOrCreate returns the mirrored movie, fetching and persisting it on
// first reference. A fetch failure aborts the whole operation; no partial
// row is ever written.
func (s *Service) GetOrCreate(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	m, err := s.Store.GetMovieByTMDBID(ctx, tmdbID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.Refresh(ctx, tmdbID)
}

// Refresh re-fetches the title and overwrites its descriptive fields. The
// upsert never touches the local aggregate columns, so a refresh cannot
// reset local_rating, watchlist_count or favorite_count.
func (s *Service) Refresh(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	payload, err := s.TMDB.GetMovie(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	m := fromTMDB(payload)
	if err := s.Store.UpsertMovieDetails(ctx, m); err != nil {
		return nil, err
	}
	// Read back so the caller sees the stored aggregates, not the
	// zero-valued insert payload.
	return s.Store.GetMovieByTMDBID(ctx, tmdbID)
}

func fromTMDB(p *tmdb.Movie) *models.Movie {
	m := &models.Movie{
		TMDBID:           p.ID,
		Title:            p.Title,
		Overview:         p.Overview,
		Runtime:          p.Runtime,
		PosterPath:       p.PosterPath,
		BackdropPath:     p.BackdropPath,
		VoteAverage:      p.VoteAverage,
		VoteCount:        p.VoteCount,
		Popularity:       p.Popularity,
		Adult:            p.Adult,
		OriginalLanguage: p.OriginalLanguage,
		Budget:           p.Budget,
		Revenue:          p.Revenue,
		Status:           p.Status,
		Tagline:          p.Tagline,
		Homepage:         p.Homepage,
		IMDBID:           p.IMDBID,
	}
	if t, err := time.Parse("2006-01-02", p.ReleaseDate); err == nil {
		m.ReleaseDate = &t
	}
	for _, g := range p.Genres {
		m.Genres = append(m.Genres, models.Genre{ID: g.ID, Name: g.Name})
	}
	for _, pc := range p.ProductionCompanies {
		m.ProductionCompanies = append(m.ProductionCompanies, models.ProductionCompany{
			ID: pc.ID, Name: pc.Name, LogoPath: pc.LogoPath, OriginCountry: pc.OriginCountry,
		})
	}
	for _, pc := range p.ProductionCountries {
		m.ProductionCountries = append(m.ProductionCountries, models.ProductionCountry{
			ISO31661: pc.ISO31661, Name: pc.Name,
		})
	}
	for _, sl := range p.SpokenLanguages {
		m.SpokenLanguages = append(m.SpokenLanguages, models.SpokenLanguage{
			EnglishName: sl.EnglishName, ISO6391: sl.ISO6391, Name: sl.Name,
		})
	}
	return m
}
