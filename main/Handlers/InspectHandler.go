package Handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// CatalogInspector is the detail-lookup slice of *TmdbHandler.
type CatalogInspector interface {
	MovieDetail(ctx context.Context, tmdbId int) (MovieResponse, error)
}

// InspectHandler serves a single catalog movie, cache first.
type InspectHandler struct {
	Tmdb  CatalogInspector
	Cache MovieCache
	Log   *zap.SugaredLogger
}

func (i *InspectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tmdbId, err := strconv.Atoi(r.URL.Query().Get("movieId"))
	if err != nil {
		http.Error(w, "movieId is required", http.StatusBadRequest)
		return
	}

	movie, err := i.Cache.FetchFromCache(r.Context(), tmdbId)
	if len(movie.Title) == 0 {
		if err != nil {
			i.Log.Warnf("failed to fetch movie from cache: %v", err)
		}
		movie, err = i.Tmdb.MovieDetail(r.Context(), tmdbId)
		if err != nil {
			i.Log.Errorf("failed to fetch movie from catalog: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		go i.Cache.SaveInCache(context.Background(), []MovieResponse{movie})
	} else {
		i.Log.Debug("found movie in cache")
	}

	WriteJson(w, i.Log, movie)
}
