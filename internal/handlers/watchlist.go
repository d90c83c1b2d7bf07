package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tech1bro/cinescope-backend/internal/auth"
	"github.com/tech1bro/cinescope-backend/internal/watchlist"
)

type WatchlistHandler struct {
	Watchlist *watchlist.Service
}

func NewWatchlistHandler(s *watchlist.Service) *WatchlistHandler {
	return &WatchlistHandler{Watchlist: s}
}

// Routes is mounted under /watchlist on the authed router.
func (h *WatchlistHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Patch("/{tmdbId}", h.update)
	r.Patch("/{tmdbId}/watched", h.watched)
	r.Patch("/{tmdbId}/unwatched", h.unwatched)
	r.Delete("/{tmdbId}", h.remove)
}

func (h *WatchlistHandler) list(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	out, err := h.Watchlist.List(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "data": out})
}

func (h *WatchlistHandler) add(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var in watchlist.AddInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	e, err := h.Watchlist.Add(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *WatchlistHandler) update(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	tmdbID, ok := pathID(w, r, "tmdbId")
	if !ok {
		return
	}
	var in watchlist.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	e, err := h.Watchlist.Update(r.Context(), uid, tmdbID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *WatchlistHandler) watched(w http.ResponseWriter, r *http.Request) {
	h.setWatched(w, r, true)
}

func (h *WatchlistHandler) unwatched(w http.ResponseWriter, r *http.Request) {
	h.setWatched(w, r, false)
}

func (h *WatchlistHandler) setWatched(w http.ResponseWriter, r *http.Request, watched bool) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	tmdbID, ok := pathID(w, r, "tmdbId")
	if !ok {
		return
	}
	e, err := h.Watchlist.SetWatched(r.Context(), uid, tmdbID, watched)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *WatchlistHandler) remove(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	tmdbID, ok := pathID(w, r, "tmdbId")
	if !ok {
		return
	}
	if err := h.Watchlist.Remove(r.Context(), uid, tmdbID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
