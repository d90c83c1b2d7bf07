package recommend

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tech1bro/cinescope-backend/internal/cache"
	"github.com/tech1bro/cinescope-backend/internal/tmdb"
)

// ErrNoPreferences means no usable genre remained after mapping.
var ErrNoPreferences = errors.New("recommend: no usable genre preferences")

// genreIDs maps TMDB's canonical movie genre names to their ids. Names not
// in the table are silently dropped.
var genreIDs = map[string]int64{
	"Action":          28,
	"Adventure":       12,
	"Animation":       16,
	"Comedy":          35,
	"Crime":           80,
	"Documentary":     99,
	"Drama":           18,
	"Family":          10751,
	"Fantasy":         14,
	"History":         36,
	"Horror":          27,
	"Music":           10402,
	"Mystery":         9648,
	"Romance":         10749,
	"Science Fiction": 878,
	"TV Movie":        10770,
	"Thriller":        53,
	"War":             10752,
	"Western":         37,
}

// Result is a discovery response plus the genre names it was derived from.
type Result struct {
	BasedOn []string           `json:"based_on"`
	Movies  *tmdb.ListResponse `json:"movies"`
}

// Engine turns a user's declared genre preferences into one TMDB discovery
// query. No local persistence; identical preference sets share a short-TTL
// cached response.
type Engine struct {
	TMDB  *tmdb.Client
	cache *cache.TTLCache[string, *Result]
}

func New(c *tmdb.Client) *Engine {
	return &Engine{TMDB: c, cache: cache.NewTTL[string, *Result](60 * time.Second)}
}

// ForGenres maps the preference names in order, drops unknowns, and asks
// TMDB to discover by the joined id set sorted by descending popularity.
func (e *Engine) ForGenres(ctx context.Context, genreNames []string) (*Result, error) {
	var (
		ids  []string
		used []string
		seen = map[int64]bool{}
	)
	for _, name := range genreNames {
		id, ok := genreIDs[name]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, strconv.FormatInt(id, 10))
		used = append(used, name)
	}
	if len(ids) == 0 {
		return nil, ErrNoPreferences
	}

	key := strings.Join(ids, ",")
	return e.cache.GetOrSet(key, func() (*Result, error) {
		movies, err := e.TMDB.DiscoverMovies(ctx, key, "popularity.desc", 1)
		if err != nil {
			return nil, err
		}
		return &Result{BasedOn: used, Movies: movies}, nil
	})
}
