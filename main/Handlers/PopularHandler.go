package Handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// PopularHandler serves the signed-out landing grid: recent popular movies
// straight from the catalog.
type PopularHandler struct {
	Tmdb  CatalogSearcher
	Cache MovieCache
	Log   *zap.SugaredLogger
}

func (p *PopularHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	movies, err := p.Tmdb.PopularMovies(r.Context())
	if err != nil {
		p.Log.Errorf("failed to fetch popular movies: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	go p.Cache.SaveInCache(context.Background(), movies)

	WriteJson(w, p.Log, movies)
}
