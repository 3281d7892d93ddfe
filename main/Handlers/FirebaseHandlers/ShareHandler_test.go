package FirebaseHandlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeShareStore struct {
	movie MovieRecord
	err   error
}

func (f *fakeShareStore) GetMovie(_ context.Context, _ string) (MovieRecord, error) {
	return f.movie, f.err
}

func TestBuildShareLinks(t *testing.T) {
	links := BuildShareLinks(MovieRecord{
		Title:       "Heat",
		ReleaseDate: "1995-12-15",
		Ratings:     Ratings{Story: 5, Looks: 4, Feels: 5, Sounds: 3},
	}, "https://flipfilm.app")

	assert.True(t, strings.HasPrefix(links.Twitter, "https://twitter.com/intent/tweet?text="))
	assert.True(t, strings.HasPrefix(links.Facebook, "https://www.facebook.com/sharer/sharer.php?u="))
	assert.True(t, strings.HasPrefix(links.Whatsapp, "https://wa.me/?text="))

	assert.Contains(t, links.Twitter, "Heat")
	assert.Contains(t, links.Twitter, "%281995%29")
	assert.Contains(t, links.Twitter, "Story%3A+5")
	assert.NotContains(t, links.Twitter, "\n", "share text must be escaped")
}

func TestBuildShareLinksShortReleaseDate(t *testing.T) {
	links := BuildShareLinks(MovieRecord{Title: "Untitled"}, "https://flipfilm.app")
	assert.Contains(t, links.Twitter, "Untitled")
}

func TestShareHandler(t *testing.T) {
	store := &fakeShareStore{movie: MovieRecord{
		ID:          "m1",
		OwnerID:     "viewer",
		Title:       "Heat",
		ReleaseDate: "1995-12-15",
		CreatedAt:   time.Now(),
	}}
	handler := &ShareHandler{
		AuthHandler: &fakeVerifier{uid: "viewer"},
		Store:       store,
		BaseUrl:     "https://flipfilm.app",
		Log:         zap.NewNop().Sugar(),
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(http.MethodGet, "/share?movieId=m1"))

	require.Equal(t, http.StatusOK, w.Code)
	var links ShareLinks
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &links))
	assert.Contains(t, links.Whatsapp, "Heat")
}

func TestShareHandlerNotOwner(t *testing.T) {
	store := &fakeShareStore{movie: MovieRecord{ID: "m1", OwnerID: "somebody-else"}}
	handler := &ShareHandler{
		AuthHandler: &fakeVerifier{uid: "viewer"},
		Store:       store,
		BaseUrl:     "https://flipfilm.app",
		Log:         zap.NewNop().Sugar(),
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(http.MethodGet, "/share?movieId=m1"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestShareHandlerNotFound(t *testing.T) {
	handler := &ShareHandler{
		AuthHandler: &fakeVerifier{uid: "viewer"},
		Store:       &fakeShareStore{err: ErrNotFound},
		BaseUrl:     "https://flipfilm.app",
		Log:         zap.NewNop().Sugar(),
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(http.MethodGet, "/share?movieId=m1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
