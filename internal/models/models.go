package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email    string `gorm:"uniqueIndex" json:"email"`
	Username string `gorm:"uniqueIndex" json:"username"`
	Avatar   string `json:"avatar"`
}

// LocalRating is the locally-derived rating aggregate on a Movie. It is
// never written by the TMDB upsert path, only by the aggregate engine.
type LocalRating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductionCompany struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path"`
	OriginCountry string `json:"origin_country"`
}

type ProductionCountry struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO6391     string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// Movie is the local mirror of a TMDB title. Descriptive fields are copied
// verbatim from the provider; LocalRating, WatchlistCount and FavoriteCount
// are owned by this service and must survive re-fetches.
type Movie struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TMDBID int64 `gorm:"uniqueIndex;not null" json:"tmdb_id"`

	Title               string              `gorm:"not null" json:"title"`
	Overview            string              `json:"overview"`
	ReleaseDate         *time.Time          `gorm:"index" json:"release_date"`
	Runtime             int                 `json:"runtime"`
	Genres              []Genre             `gorm:"serializer:json" json:"genres"`
	PosterPath          string              `json:"poster_path"`
	BackdropPath        string              `json:"backdrop_path"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int64               `json:"vote_count"`
	Popularity          float64             `gorm:"index" json:"popularity"`
	Adult               bool                `json:"adult"`
	OriginalLanguage    string              `json:"original_language"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	Homepage            string              `json:"homepage"`
	IMDBID              string              `json:"imdb_id"`
	ProductionCompanies []ProductionCompany `gorm:"serializer:json" json:"production_companies"`
	ProductionCountries []ProductionCountry `gorm:"serializer:json" json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `gorm:"serializer:json" json:"spoken_languages"`

	LocalRating    LocalRating `gorm:"embedded;embeddedPrefix:local_rating_" json:"local_rating"`
	WatchlistCount int64       `json:"watchlist_count"`
	FavoriteCount  int64       `json:"favorite_count"`
}

// Review is one user's review of one title. The (user_id, tmdb_id) unique
// index is the source of truth for the one-review-per-user invariant; signal
// entities are hard-deleted so the index frees up on removal.
type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_title" json:"user_id"`
	MovieID uint   `gorm:"index;not null" json:"movie_id"`
	TMDBID  int64  `gorm:"not null;uniqueIndex:idx_reviews_user_title" json:"tmdb_id"`

	Rating   int    `gorm:"not null;check:rating >= 1 AND rating <= 10" json:"rating"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"not null" json:"content"`
	Spoilers bool   `json:"spoilers"`

	LikesCount int64      `json:"likes_count"`
	IsEdited   bool       `json:"is_edited"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`

	Movie Movie        `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
	Likes []ReviewLike `gorm:"constraint:OnDelete:CASCADE" json:"likes,omitempty"`
}

type ReviewLike struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ReviewID uint   `gorm:"not null;uniqueIndex:idx_review_likes_review_user" json:"review_id"`
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_review_likes_review_user" json:"user_id"`
}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_watchlist_user_title" json:"user_id"`
	MovieID uint   `gorm:"index;not null" json:"movie_id"`
	TMDBID  int64  `gorm:"not null;uniqueIndex:idx_watchlist_user_title" json:"tmdb_id"`

	Watched   bool       `gorm:"index" json:"watched"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
	Priority  string     `gorm:"default:medium" json:"priority"`
	Notes     string     `json:"notes"`

	Movie Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_title" json:"user_id"`
	MovieID uint   `gorm:"index;not null" json:"movie_id"`
	TMDBID  int64  `gorm:"not null;uniqueIndex:idx_favorites_user_title" json:"tmdb_id"`

	Movie Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
}
