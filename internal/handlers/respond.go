package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tech1bro/cinescope-backend/internal/favorites"
	"github.com/tech1bro/cinescope-backend/internal/recommend"
	"github.com/tech1bro/cinescope-backend/internal/reviews"
	"github.com/tech1bro/cinescope-backend/internal/store"
	"github.com/tech1bro/cinescope-backend/internal/tmdb"
	"github.com/tech1bro/cinescope-backend/internal/validate"
	"github.com/tech1bro/cinescope-backend/internal/watchlist"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps each error kind to one stable outward status. Internal
// details never reach the response body for unexpected errors.
func writeError(w http.ResponseWriter, err error) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Fields})
		return
	}

	switch {
	case errors.Is(err, tmdb.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, reviews.ErrNotFound),
		errors.Is(err, watchlist.ErrNotFound),
		errors.Is(err, favorites.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, reviews.ErrAlreadyExists),
		errors.Is(err, watchlist.ErrAlreadyExists),
		errors.Is(err, favorites.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already exists"})
	case errors.Is(err, reviews.ErrAlreadyLiked):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already liked"})
	case errors.Is(err, reviews.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, recommend.ErrNoPreferences):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no favorite genres to recommend from"})
	case errors.Is(err, tmdb.ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "movie data provider unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
