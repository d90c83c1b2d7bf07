package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tech1bro/cinescope-backend/internal/activity"
	"github.com/tech1bro/cinescope-backend/internal/auth"
	"github.com/tech1bro/cinescope-backend/internal/store"
)

type UserHandler struct {
	Store    *store.Store
	Activity *activity.Aggregator
}

func NewUserHandler(s *store.Store, a *activity.Aggregator) *UserHandler {
	return &UserHandler{Store: s, Activity: a}
}

// Routes is mounted under /users on the authed router.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/stats", h.stats)
	r.Get("/{id}/activity", h.activity)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageWindow(r)
	users, err := h.Store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(users), "data": users})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	u, err := h.Store.GetUser(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := h.Store.GetUserStats(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "stats": st})
}

func (h *UserHandler) activity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	events, err := h.Activity.Recent(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(events), "data": events})
}
