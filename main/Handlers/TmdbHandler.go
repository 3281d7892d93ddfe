package Handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const popularMovieCount = 9

// TmdbHandler talks to the TMDB REST API.
type TmdbHandler struct {
	ApiKey  string
	BaseUrl string
	Client  *http.Client
	Log     *zap.SugaredLogger
}

func NewTmdbHandler(apiKey, baseUrl string, log *zap.SugaredLogger) *TmdbHandler {
	return &TmdbHandler{
		ApiKey:  apiKey,
		BaseUrl: baseUrl,
		Client:  &http.Client{Timeout: 15 * time.Second},
		Log:     log,
	}
}

type tmdbMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type tmdbListResponse struct {
	Results []tmdbMovie `json:"results"`
}

// SearchMovies runs a text search against the catalog.
func (t *TmdbHandler) SearchMovies(ctx context.Context, query string) ([]MovieResponse, error) {
	if query == "" {
		return []MovieResponse{}, nil
	}
	requestUrl := fmt.Sprintf("%s/search/movie?api_key=%s&language=en-US&query=%s&page=1",
		t.BaseUrl, t.ApiKey, url.QueryEscape(query))
	return t.fetchList(ctx, requestUrl, 0)
}

// PopularMovies fetches the most popular movies released in the last three
// years, capped at popularMovieCount. Shown to signed-out users.
func (t *TmdbHandler) PopularMovies(ctx context.Context) ([]MovieResponse, error) {
	threeYearsAgo := time.Now().AddDate(-3, 0, 0).Format("2006-01-02")
	requestUrl := fmt.Sprintf("%s/discover/movie?api_key=%s&language=en-US&sort_by=popularity.desc&include_adult=false&include_video=false&page=1&primary_release_date.gte=%s",
		t.BaseUrl, t.ApiKey, threeYearsAgo)
	return t.fetchList(ctx, requestUrl, popularMovieCount)
}

// MovieDetail fetches a single movie by its TMDB id.
func (t *TmdbHandler) MovieDetail(ctx context.Context, tmdbId int) (MovieResponse, error) {
	requestUrl := fmt.Sprintf("%s/movie/%d?api_key=%s&language=en-US", t.BaseUrl, tmdbId, t.ApiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return MovieResponse{}, err
	}
	res, err := t.Client.Do(req)
	if err != nil {
		return MovieResponse{}, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode != http.StatusOK {
		return MovieResponse{}, fmt.Errorf("catalog returned status %d", res.StatusCode)
	}

	var movie tmdbMovie
	if err := json.NewDecoder(res.Body).Decode(&movie); err != nil {
		return MovieResponse{}, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return MovieResponse{
		TmdbID:      movie.ID,
		Title:       movie.Title,
		Overview:    movie.Overview,
		PosterPath:  movie.PosterPath,
		PosterURL:   PosterUrl(movie.PosterPath),
		ReleaseDate: movie.ReleaseDate,
		VoteAverage: movie.VoteAverage,
	}, nil
}

func (t *TmdbHandler) fetchList(ctx context.Context, requestUrl string, limit int) ([]MovieResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, err
	}
	res, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", res.StatusCode)
	}

	var listResponse tmdbListResponse
	if err := json.NewDecoder(res.Body).Decode(&listResponse); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	movies := make([]MovieResponse, 0, len(listResponse.Results))
	for _, movie := range listResponse.Results {
		if limit > 0 && len(movies) == limit {
			break
		}
		movies = append(movies, MovieResponse{
			TmdbID:      movie.ID,
			Title:       movie.Title,
			Overview:    movie.Overview,
			PosterPath:  movie.PosterPath,
			PosterURL:   PosterUrl(movie.PosterPath),
			ReleaseDate: movie.ReleaseDate,
			VoteAverage: movie.VoteAverage,
		})
	}
	return movies, nil
}
