package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/go-chi/chi/v5"

	"github.com/tech1bro/cinescope-backend/internal/activity"
	"github.com/tech1bro/cinescope-backend/internal/aggregate"
	"github.com/tech1bro/cinescope-backend/internal/auth"
	"github.com/tech1bro/cinescope-backend/internal/favorites"
	"github.com/tech1bro/cinescope-backend/internal/handlers"
	httpserver "github.com/tech1bro/cinescope-backend/internal/http"
	"github.com/tech1bro/cinescope-backend/internal/movies"
	"github.com/tech1bro/cinescope-backend/internal/recommend"
	"github.com/tech1bro/cinescope-backend/internal/reviews"
	"github.com/tech1bro/cinescope-backend/internal/store"
	"github.com/tech1bro/cinescope-backend/internal/tmdb"
	"github.com/tech1bro/cinescope-backend/internal/watchlist"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	TMDBAPIKey  string `envconfig:"TMDB_API_KEY" required:"true"`
	TMDBBaseURL string `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer   string `envconfig:"JWT_ISSUER"`
	JWTAudience string `envconfig:"JWT_AUDIENCE"`
}

func mustLoadEnv(log *slog.Logger) Config {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		log.Error("config error", "error", err)
		os.Exit(1)
	}
	return c
}

func mustDB(log *slog.Logger, dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Error("db connect error", "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sqlDB, _ := db.DB()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("db ping error", "error", err)
		os.Exit(1)
	}
	return db
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := mustLoadEnv(log)

	db := mustDB(log, cfg.DatabaseURL)
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Error("db migrate error", "error", err)
		os.Exit(1)
	}

	// Missing credentials are configuration errors, fatal here rather than
	// surfacing per-request.
	tmdbClient, err := tmdb.New(cfg.TMDBAPIKey, cfg.TMDBBaseURL)
	if err != nil {
		log.Error("tmdb config error", "error", err)
		os.Exit(1)
	}
	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		log.Error("auth config error", "error", err)
		os.Exit(1)
	}

	movieSvc := movies.New(st, tmdbClient)
	agg := aggregate.New(st)
	reviewSvc := reviews.New(st, movieSvc, agg, log)
	watchlistSvc := watchlist.New(st, movieSvc, agg, log)
	favoriteSvc := favorites.New(st, movieSvc, agg, log)
	recommendEngine := recommend.New(tmdbClient)
	activityAgg := activity.New(st)

	movieHandler := handlers.NewMovieHandler(movieSvc, tmdbClient, recommendEngine)
	reviewHandler := handlers.NewReviewHandler(reviewSvc)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistSvc)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteSvc)
	userHandler := handlers.NewUserHandler(st, activityAgg)

	mounter := func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Route("/movies", func(r chi.Router) {
				movieHandler.Routes(r)
				r.Get("/{id}/reviews", reviewHandler.MovieReviews)
			})
		})
		// Reading reviews is public; writing them requires a token.
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.Feed)
			r.Get("/user/{userId}", reviewHandler.ByUser)
			r.Group(func(r chi.Router) {
				r.Use(verifier.Middleware)
				reviewHandler.Routes(r)
			})
		})
		// Authed routes
		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware)
			r.Get("/me", userHandler.Me)
			r.Get("/recommendations", movieHandler.PersonalRecommendations)
			r.Route("/watchlist", watchlistHandler.Routes)
			r.Route("/favorites", favoriteHandler.Routes)
			r.Route("/users", userHandler.Routes)
		})
	}

	srv := httpserver.NewServer(mounter)

	addr := ":" + cfg.Port
	log.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Router); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
