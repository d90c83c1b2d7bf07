package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tech1bro/cinescope-backend/internal/auth"
	"github.com/tech1bro/cinescope-backend/internal/reviews"
)

type ReviewHandler struct {
	Reviews *reviews.Service
}

func NewReviewHandler(s *reviews.Service) *ReviewHandler { return &ReviewHandler{Reviews: s} }

// Routes carries the token-protected review operations; the public read
// endpoints (Feed, ByUser, MovieReviews) are mounted separately.
func (h *ReviewHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/like", h.like)
	r.Delete("/{id}/like", h.unlike)
}

// MovieReviews is mounted under /movies/{id}/reviews (public).
func (h *ReviewHandler) MovieReviews(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit, offset := pageWindow(r)
	out, err := h.Reviews.ListByMovie(r.Context(), tmdbID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "data": out})
}

// Feed is the public global feed, newest first, mounted at GET /reviews.
func (h *ReviewHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageWindow(r)
	out, err := h.Reviews.ListRecent(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "data": out})
}

// ByUser lists one user's reviews, mounted at GET /reviews/user/{userId}.
func (h *ReviewHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	limit, _ := pageWindow(r)
	out, err := h.Reviews.ListByUser(r.Context(), chi.URLParam(r, "userId"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "data": out})
}

func (h *ReviewHandler) create(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var in reviews.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	rev, err := h.Reviews.Create(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

func (h *ReviewHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	rev, err := h.Reviews.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *ReviewHandler) update(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	var in reviews.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	rev, err := h.Reviews.Update(r.Context(), uid, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *ReviewHandler) delete(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	if err := h.Reviews.Delete(r.Context(), uid, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) like(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	n, err := h.Reviews.Like(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"likes_count": n})
}

func (h *ReviewHandler) unlike(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	n, err := h.Reviews.Unlike(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"likes_count": n})
}

func pageWindow(r *http.Request) (limit, offset int) {
	limit = 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func reviewID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}
