package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tech1bro/cinescope-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
)

type Store struct{ DB *gorm.DB }

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// Migrate creates/updates the schema for every collection the service owns.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Review{},
		&models.ReviewLike{},
		&models.WatchlistEntry{},
		&models.Favorite{},
	)
}

// translate maps gorm errors onto the store's sentinels. The DB constraint,
// not an application pre-check, is the source of truth for duplicates.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// Users

func (s *Store) UpsertUser(ctx context.Context, u *models.User) error {
	if u.ID == "" && u.Email == "" && u.Username == "" {
		return errors.New("store: missing user identifiers")
	}
	return translate(s.DB.WithContext(ctx).Where(models.User{Email: u.Email}).Assign(u).FirstOrCreate(u).Error)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	var out []models.User
	err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, translate(err)
}

// Movies

// movieDetailColumns are the provider-sourced columns overwritten on
// re-fetch. The local aggregate columns are deliberately absent so an upsert
// can never reset local_rating_*, watchlist_count or favorite_count.
var movieDetailColumns = []string{
	"title", "overview", "release_date", "runtime", "genres",
	"poster_path", "backdrop_path", "vote_average", "vote_count",
	"popularity", "adult", "original_language", "budget", "revenue",
	"status", "tagline", "homepage", "imdb_id",
	"production_companies", "production_countries", "spoken_languages",
	"updated_at",
}

// UpsertMovieDetails inserts the movie or overwrites its descriptive
// columns, keyed on tmdb_id. Concurrent upserts for the same title converge
// to one row with last-write-wins on the descriptive fields.
func (s *Store) UpsertMovieDetails(ctx context.Context, m *models.Movie) error {
	return translate(s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tmdb_id"}},
		DoUpdates: clause.AssignmentColumns(movieDetailColumns),
	}).Create(m).Error)
}

func (s *Store) GetMovieByTMDBID(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	var m models.Movie
	if err := s.DB.WithContext(ctx).First(&m, "tmdb_id = ?", tmdbID).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// SetLocalRating persists a recomputed rating aggregate.
func (s *Store) SetLocalRating(ctx context.Context, tmdbID int64, average float64, count int64) error {
	return translate(s.DB.WithContext(ctx).Model(&models.Movie{}).Where("tmdb_id = ?", tmdbID).Updates(map[string]any{
		"local_rating_average": average,
		"local_rating_count":   count,
	}).Error)
}

// AddWatchlistCount applies delta to watchlist_count in a single UPDATE so
// concurrent adds/removes from different users cannot lose updates. The CASE
// floors the counter at zero on both postgres and sqlite.
func (s *Store) AddWatchlistCount(ctx context.Context, tmdbID int64, delta int) error {
	return translate(s.DB.WithContext(ctx).Model(&models.Movie{}).Where("tmdb_id = ?", tmdbID).
		UpdateColumn("watchlist_count", gorm.Expr(
			"CASE WHEN watchlist_count + ? < 0 THEN 0 ELSE watchlist_count + ? END", delta, delta,
		)).Error)
}

// AddFavoriteCount is the favorite_count twin of AddWatchlistCount.
func (s *Store) AddFavoriteCount(ctx context.Context, tmdbID int64, delta int) error {
	return translate(s.DB.WithContext(ctx).Model(&models.Movie{}).Where("tmdb_id = ?", tmdbID).
		UpdateColumn("favorite_count", gorm.Expr(
			"CASE WHEN favorite_count + ? < 0 THEN 0 ELSE favorite_count + ? END", delta, delta,
		)).Error)
}

// RatingStats holds the aggregate over the live review set for one title.
type RatingStats struct {
	Count   int64
	Average float64
}

// MovieRatingStats aggregates over whatever review set is live at read time.
func (s *Store) MovieRatingStats(ctx context.Context, tmdbID int64) (RatingStats, error) {
	var st RatingStats
	err := s.DB.WithContext(ctx).Model(&models.Review{}).Where("tmdb_id = ?", tmdbID).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").Scan(&st).Error
	return st, translate(err)
}

// Reviews

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return translate(s.DB.WithContext(ctx).Create(r).Error)
}

func (s *Store) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var r models.Review
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) GetReviewWithMovie(ctx context.Context, id uint) (*models.Review, error) {
	var r models.Review
	if err := s.DB.WithContext(ctx).Preload("Movie").First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// UpdateReview applies a partial field update to one review.
func (s *Store) UpdateReview(ctx context.Context, id uint, fields map[string]any) error {
	return translate(s.DB.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Updates(fields).Error)
}

func (s *Store) DeleteReview(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListReviewsByTMDBID(ctx context.Context, tmdbID int64, limit, offset int) ([]models.Review, error) {
	var out []models.Review
	err := s.DB.WithContext(ctx).Where("tmdb_id = ?", tmdbID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, translate(err)
}

func (s *Store) ListReviewsByUser(ctx context.Context, userID string, limit int) ([]models.Review, error) {
	var out []models.Review
	err := s.DB.WithContext(ctx).Preload("Movie").Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, translate(err)
}

// ListRecentReviews is the global feed across all users and titles.
func (s *Store) ListRecentReviews(ctx context.Context, limit, offset int) ([]models.Review, error) {
	var out []models.Review
	err := s.DB.WithContext(ctx).Preload("Movie").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, translate(err)
}

// Review likes

// AddReviewLike inserts a like membership row; inserted reports whether the
// row was new. A duplicate like hits the unique index and is reported, not
// raced past.
func (s *Store) AddReviewLike(ctx context.Context, reviewID uint, userID string) (inserted bool, err error) {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.ReviewLike{ReviewID: reviewID, UserID: userID})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) RemoveReviewLike(ctx context.Context, reviewID uint, userID string) (removed bool, err error) {
	res := s.DB.WithContext(ctx).Where("review_id = ? AND user_id = ?", reviewID, userID).Delete(&models.ReviewLike{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) CountReviewLikes(ctx context.Context, reviewID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.ReviewLike{}).Where("review_id = ?", reviewID).Count(&n).Error
	return n, translate(err)
}

func (s *Store) SetReviewLikesCount(ctx context.Context, reviewID uint, n int64) error {
	return translate(s.DB.WithContext(ctx).Model(&models.Review{}).Where("id = ?", reviewID).
		UpdateColumn("likes_count", n).Error)
}

// Watchlist

func (s *Store) CreateWatchlistEntry(ctx context.Context, e *models.WatchlistEntry) error {
	return translate(s.DB.WithContext(ctx).Create(e).Error)
}

func (s *Store) GetWatchlistEntry(ctx context.Context, userID string, tmdbID int64) (*models.WatchlistEntry, error) {
	var e models.WatchlistEntry
	if err := s.DB.WithContext(ctx).First(&e, "user_id = ? AND tmdb_id = ?", userID, tmdbID).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// UpdateWatchlistEntry applies a partial field update to one user's entry.
func (s *Store) UpdateWatchlistEntry(ctx context.Context, userID string, tmdbID int64, fields map[string]any) error {
	res := s.DB.WithContext(ctx).Model(&models.WatchlistEntry{}).
		Where("user_id = ? AND tmdb_id = ?", userID, tmdbID).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteWatchlistEntry(ctx context.Context, userID string, tmdbID int64) error {
	res := s.DB.WithContext(ctx).Where("user_id = ? AND tmdb_id = ?", userID, tmdbID).Delete(&models.WatchlistEntry{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListWatchlistByUser(ctx context.Context, userID string, limit int) ([]models.WatchlistEntry, error) {
	var out []models.WatchlistEntry
	q := s.DB.WithContext(ctx).Preload("Movie").Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, translate(err)
}

// Favorites

func (s *Store) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	return translate(s.DB.WithContext(ctx).Create(f).Error)
}

func (s *Store) DeleteFavorite(ctx context.Context, userID string, tmdbID int64) error {
	res := s.DB.WithContext(ctx).Where("user_id = ? AND tmdb_id = ?", userID, tmdbID).Delete(&models.Favorite{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListFavoritesByUser(ctx context.Context, userID string, limit int) ([]models.Favorite, error) {
	var out []models.Favorite
	q := s.DB.WithContext(ctx).Preload("Movie").Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, translate(err)
}

// User statistics

type WatchlistStats struct {
	Total     int64 `json:"total"`
	Watched   int64 `json:"watched"`
	Unwatched int64 `json:"unwatched"`
}

type ReviewStats struct {
	Total         int64   `json:"total"`
	AverageRating float64 `json:"average_rating"`
	TotalLikes    int64   `json:"total_likes"`
}

type UserStats struct {
	Watchlist WatchlistStats `json:"watchlist"`
	Favorites int64          `json:"favorites"`
	Reviews   ReviewStats    `json:"reviews"`
}

func (s *Store) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	var st UserStats
	err := s.DB.WithContext(ctx).Model(&models.WatchlistEntry{}).Where("user_id = ?", userID).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN watched THEN 1 ELSE 0 END), 0) AS watched, COALESCE(SUM(CASE WHEN watched THEN 0 ELSE 1 END), 0) AS unwatched").
		Scan(&st.Watchlist).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := s.DB.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&st.Favorites).Error; err != nil {
		return nil, translate(err)
	}
	err = s.DB.WithContext(ctx).Model(&models.Review{}).Where("user_id = ?", userID).
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average_rating, COALESCE(SUM(likes_count), 0) AS total_likes").
		Scan(&st.Reviews).Error
	if err != nil {
		return nil, translate(err)
	}
	return &st, nil
}
