package Handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	movies []MovieResponse
	detail MovieResponse
	err    error

	lastQuery string
}

func (f *fakeCatalog) SearchMovies(_ context.Context, query string) ([]MovieResponse, error) {
	f.lastQuery = query
	return f.movies, f.err
}

func (f *fakeCatalog) PopularMovies(context.Context) ([]MovieResponse, error) {
	return f.movies, f.err
}

func (f *fakeCatalog) MovieDetail(context.Context, int) (MovieResponse, error) {
	return f.detail, f.err
}

type fakeCache struct {
	mu     sync.Mutex
	cached MovieResponse
	saved  [][]MovieResponse
	done   chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{done: make(chan struct{}, 4)}
}

func (f *fakeCache) FetchFromCache(context.Context, int) (MovieResponse, error) {
	return f.cached, nil
}

func (f *fakeCache) SaveInCache(_ context.Context, movies []MovieResponse) {
	f.mu.Lock()
	f.saved = append(f.saved, movies)
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakeCache) waitForSave(t *testing.T) []MovieResponse {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(time.Second):
		t.Fatal("cache save was not called")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[len(f.saved)-1]
}

func TestSearchHandler(t *testing.T) {
	catalog := &fakeCatalog{movies: []MovieResponse{{TmdbID: 78, Title: "Blade Runner"}}}
	cache := newFakeCache()
	handler := &SearchHandler{Tmdb: catalog, Cache: cache, Log: zap.NewNop().Sugar()}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/search?search=blade", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "blade", catalog.lastQuery)

	var movies []MovieResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Blade Runner", movies[0].Title)

	assert.Equal(t, catalog.movies, cache.waitForSave(t))
}

func TestSearchHandlerRequiresTerm(t *testing.T) {
	handler := &SearchHandler{Tmdb: &fakeCatalog{}, Cache: newFakeCache(), Log: zap.NewNop().Sugar()}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/search", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSearchHandlerCatalogError(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("catalog down")}
	handler := &SearchHandler{Tmdb: catalog, Cache: newFakeCache(), Log: zap.NewNop().Sugar()}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/search?search=blade", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestPopularHandler(t *testing.T) {
	catalog := &fakeCatalog{movies: []MovieResponse{{TmdbID: 1}, {TmdbID: 2}}}
	cache := newFakeCache()
	handler := &PopularHandler{Tmdb: catalog, Cache: cache, Log: zap.NewNop().Sugar()}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/popular", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var movies []MovieResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &movies))
	assert.Len(t, movies, 2)
	cache.waitForSave(t)
}

func TestInspectHandlerCacheHit(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("catalog must not be called")}
	cache := newFakeCache()
	cache.cached = MovieResponse{TmdbID: 78, Title: "Blade Runner"}
	handler := &InspectHandler{Tmdb: catalog, Cache: cache, Log: zap.NewNop().Sugar()}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/inspect?movieId=78", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var movie MovieResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &movie))
	assert.Equal(t, "Blade Runner", movie.Title)
	assert.Empty(t, cache.saved)
}

func TestInspectHandlerCacheMiss(t *testing.T) {
	catalog := &fakeCatalog{detail: MovieResponse{TmdbID: 78, Title: "Blade Runner"}}
	cache := newFakeCache()
	handler := &InspectHandler{Tmdb: catalog, Cache: cache, Log: zap.NewNop().Sugar()}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/inspect?movieId=78", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	saved := cache.waitForSave(t)
	require.Len(t, saved, 1)
	assert.Equal(t, 78, saved[0].TmdbID)
}

func TestInspectHandlerBadId(t *testing.T) {
	handler := &InspectHandler{Tmdb: &fakeCatalog{}, Cache: newFakeCache(), Log: zap.NewNop().Sugar()}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/inspect?movieId=abc", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
