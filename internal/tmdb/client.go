package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Error taxonomy for provider calls. A 404 from TMDB is terminal for the
// request; anything transport-level or 5xx is retryable by the caller.
var (
	ErrMissingAPIKey = errors.New("tmdb: api key is not configured")
	ErrNotFound      = errors.New("tmdb: not found")
	ErrUnavailable   = errors.New("tmdb: upstream unavailable")
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New builds a TMDB client. The key is validated here so a missing
// credential fails at process start, not on the first request.
func New(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Movie is the full detail payload for a single title.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Runtime          int     `json:"runtime"`
	Genres           []Genre `json:"genres"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	Status           string  `json:"status"`
	Tagline          string  `json:"tagline"`
	Homepage         string  `json:"homepage"`
	IMDBID           string  `json:"imdb_id"`

	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
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

// ListItem is the abbreviated movie shape in list responses.
type ListItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int64 `json:"genre_ids"`
}

type ListResponse struct {
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
	Results      []ListItem `json:"results"`
}

// GetMovie fetches the full payload for one title. No retries; the caller
// decides whether to fall back to mirrored data.
func (c *Client) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	var out Movie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*ListResponse, error) {
	p := url.Values{}
	p.Set("query", query)
	setPage(p, page)
	var out ListResponse
	if err := c.get(ctx, "/search/movie", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PopularMovies(ctx context.Context, page int) (*ListResponse, error) {
	p := url.Values{}
	setPage(p, page)
	var out ListResponse
	if err := c.get(ctx, "/movie/popular", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TopRatedMovies(ctx context.Context, page int) (*ListResponse, error) {
	p := url.Values{}
	setPage(p, page)
	var out ListResponse
	if err := c.get(ctx, "/movie/top_rated", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrendingMovies gets trending titles for a time window (day|week).
func (c *Client) TrendingMovies(ctx context.Context, window string) (*ListResponse, error) {
	if window == "" {
		window = "week"
	}
	var out ListResponse
	if err := c.get(ctx, "/trending/movie/"+url.PathEscape(window), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommendations lists TMDB's own similar-title suggestions for one movie.
func (c *Client) Recommendations(ctx context.Context, id int64, page int) (*ListResponse, error) {
	p := url.Values{}
	setPage(p, page)
	var out ListResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/recommendations", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DiscoverMovies runs a discovery query. genres is a comma-joined TMDB genre
// id list; sortBy defaults to popularity.desc.
func (c *Client) DiscoverMovies(ctx context.Context, genres, sortBy string, page int) (*ListResponse, error) {
	p := url.Values{}
	if genres != "" {
		p.Set("with_genres", genres)
	}
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	p.Set("sort_by", sortBy)
	setPage(p, page)
	var out ListResponse
	if err := c.get(ctx, "/discover/movie", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setPage(p url.Values, page int) {
	if page > 0 {
		p.Set("page", fmt.Sprint(page))
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("tmdb: bad url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		// Network failures and client timeouts are indistinguishable from a
		// down provider as far as the caller is concerned.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	default:
		return fmt.Errorf("tmdb: status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: decode: %w", err)
	}
	return nil
}
