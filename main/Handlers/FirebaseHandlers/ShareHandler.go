package FirebaseHandlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Miltondz/flipFilme/main/Handlers"
	"go.uber.org/zap"
)

// ShareLinks are ready-made share intents for one logged movie.
type ShareLinks struct {
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	Whatsapp string `json:"whatsapp"`
}

// ShareStore is the slice of *Store the share endpoint needs.
type ShareStore interface {
	GetMovie(ctx context.Context, movieId string) (MovieRecord, error)
}

type ShareHandler struct {
	AuthHandler Handlers.TokenVerifier
	Store       ShareStore
	BaseUrl     string
	Log         *zap.SugaredLogger
}

// BuildShareLinks renders the share text for a record and wraps it in the
// twitter/facebook/whatsapp intent URLs.
func BuildShareLinks(movie MovieRecord, baseUrl string) ShareLinks {
	year := ""
	if len(movie.ReleaseDate) >= 4 {
		year = movie.ReleaseDate[:4]
	}
	shareText := fmt.Sprintf("Check out what I'm watching on FlipFilm!\n\n"+
		"🎬 %s (%s)\n\n"+
		"My ratings:\n"+
		"Story: %d🐕\n"+
		"Looks: %d🐕\n"+
		"Feels: %d🐕\n"+
		"Sounds: %d🐕\n\n"+
		"Join me at %s",
		movie.Title, year,
		movie.Ratings.Story, movie.Ratings.Looks, movie.Ratings.Feels, movie.Ratings.Sounds,
		baseUrl)

	escapedText := url.QueryEscape(shareText)
	return ShareLinks{
		Twitter:  fmt.Sprintf("https://twitter.com/intent/tweet?text=%s", escapedText),
		Facebook: fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s&quote=%s", url.QueryEscape(baseUrl), escapedText),
		Whatsapp: fmt.Sprintf("https://wa.me/?text=%s", escapedText),
	}
}

func (s *ShareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, s.AuthHandler, s.Log, http.MethodGet)
	if !authorized {
		return
	}
	movieId := r.URL.Query().Get("movieId")
	if movieId == "" {
		http.Error(w, "Missing movieId", http.StatusBadRequest)
		return
	}

	movie, err := s.Store.GetMovie(r.Context(), movieId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "movie doesn't exist", http.StatusNotFound)
			return
		}
		s.Log.Errorf("failed to get movie: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if movie.OwnerID != token.UID {
		http.Error(w, "not your movie", http.StatusForbidden)
		return
	}

	Handlers.WriteJson(w, s.Log, BuildShareLinks(movie, s.BaseUrl))
}
