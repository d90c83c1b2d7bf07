package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tech1bro/cinescope-backend/internal/auth"
	"github.com/tech1bro/cinescope-backend/internal/favorites"
)

type FavoriteHandler struct {
	Favorites *favorites.Service
}

func NewFavoriteHandler(s *favorites.Service) *FavoriteHandler {
	return &FavoriteHandler{Favorites: s}
}

// Routes is mounted under /favorites on the authed router.
func (h *FavoriteHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Delete("/{tmdbId}", h.remove)
}

func (h *FavoriteHandler) list(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	out, err := h.Favorites.List(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "data": out})
}

func (h *FavoriteHandler) add(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var in struct {
		TMDBID int64 `json:"tmdb_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.TMDBID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tmdb_id is required"})
		return
	}
	f, err := h.Favorites.Add(r.Context(), uid, in.TMDBID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *FavoriteHandler) remove(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	tmdbID, ok := pathID(w, r, "tmdbId")
	if !ok {
		return
	}
	if err := h.Favorites.Remove(r.Context(), uid, tmdbID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
