package Handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// MovieCache is the slice of *MongoHandler the catalog handlers need.
type MovieCache interface {
	FetchFromCache(ctx context.Context, tmdbId int) (MovieResponse, error)
	SaveInCache(ctx context.Context, movies []MovieResponse)
}

// CatalogSearcher is the slice of *TmdbHandler the catalog handlers need.
type CatalogSearcher interface {
	SearchMovies(ctx context.Context, query string) ([]MovieResponse, error)
	PopularMovies(ctx context.Context) ([]MovieResponse, error)
}

type SearchHandler struct {
	Tmdb  CatalogSearcher
	Cache MovieCache
	Log   *zap.SugaredLogger
}

func (s *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	search := r.URL.Query().Get("search")
	if search == "" {
		http.Error(w, "Search term is required", http.StatusBadRequest)
		return
	}

	movies, err := s.Tmdb.SearchMovies(r.Context(), search)
	if err != nil {
		s.Log.Errorf("failed to search catalog: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	go s.Cache.SaveInCache(context.Background(), movies)

	WriteJson(w, s.Log, movies)
}

func WriteJson(w http.ResponseWriter, log *zap.SugaredLogger, payload any) {
	jsonResponse, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(jsonResponse); err != nil {
		log.Warnf("failed to write response: %v", err)
	}
}
