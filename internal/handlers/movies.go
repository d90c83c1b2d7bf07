package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tech1bro/cinescope-backend/internal/cache"
	"github.com/tech1bro/cinescope-backend/internal/movies"
	"github.com/tech1bro/cinescope-backend/internal/recommend"
	"github.com/tech1bro/cinescope-backend/internal/tmdb"
)

type MovieHandler struct {
	Movies    *movies.Service
	TMDB      *tmdb.Client
	Recommend *recommend.Engine
	ListCache *cache.TTLCache[string, *tmdb.ListResponse]
}

func NewMovieHandler(m *movies.Service, t *tmdb.Client, r *recommend.Engine) *MovieHandler {
	return &MovieHandler{Movies: m, TMDB: t, Recommend: r, ListCache: cache.NewTTL[string, *tmdb.ListResponse](60 * time.Second)}
}

func (h *MovieHandler) Routes(r chi.Router) {
	r.Get("/search", h.search)
	r.Get("/popular", h.popular)
	r.Get("/top-rated", h.topRated)
	r.Get("/trending", h.trending)
	r.Get("/genre/{genreId}", h.byGenre)
	r.Get("/{id}", h.detail)
	r.Get("/{id}/recommendations", h.recommendations)
	r.Post("/{id}/refresh", h.refresh)
}

// GET /movies/{id}: get-or-create against the local mirror.
func (h *MovieHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.Movies.GetOrCreate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// POST /movies/{id}/refresh: force a descriptive-field re-fetch.
func (h *MovieHandler) refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.Movies.Refresh(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Stateless TMDB passthroughs. No local state; short-TTL cached.

func (h *MovieHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	res, err := h.TMDB.SearchMovies(r.Context(), q, queryPage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *MovieHandler) popular(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "popular:"+r.URL.RawQuery, func() (*tmdb.ListResponse, error) {
		return h.TMDB.PopularMovies(r.Context(), queryPage(r))
	})
}

func (h *MovieHandler) topRated(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "top_rated:"+r.URL.RawQuery, func() (*tmdb.ListResponse, error) {
		return h.TMDB.TopRatedMovies(r.Context(), queryPage(r))
	})
}

func (h *MovieHandler) trending(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("window")
	h.cachedList(w, r, "trending:"+window, func() (*tmdb.ListResponse, error) {
		return h.TMDB.TrendingMovies(r.Context(), window)
	})
}

func (h *MovieHandler) byGenre(w http.ResponseWriter, r *http.Request) {
	genreID := chi.URLParam(r, "genreId")
	if _, err := strconv.ParseInt(genreID, 10, 64); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "genreId must be an integer"})
		return
	}
	sortBy := r.URL.Query().Get("sort_by")
	res, err := h.TMDB.DiscoverMovies(r.Context(), genreID, sortBy, queryPage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *MovieHandler) recommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.TMDB.Recommendations(r.Context(), id, queryPage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PersonalRecommendations maps the genre names in the request to a single
// discovery query. Mounted on the authed router.
func (h *MovieHandler) PersonalRecommendations(w http.ResponseWriter, r *http.Request) {
	genres := r.URL.Query()["genre"]
	res, err := h.Recommend.ForGenres(r.Context(), genres)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *MovieHandler) cachedList(w http.ResponseWriter, r *http.Request, key string, load func() (*tmdb.ListResponse, error)) {
	res, err := h.ListCache.GetOrSet(key, load)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, res)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func queryPage(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return page
}
