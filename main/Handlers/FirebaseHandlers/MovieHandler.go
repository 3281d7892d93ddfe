package FirebaseHandlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Miltondz/flipFilme/main/Handlers"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MovieStore is the slice of *Store the movie endpoints need.
type MovieStore interface {
	CreateMovie(ctx context.Context, ownerId string, record MovieRecord) (string, error)
	DeleteMovie(ctx context.Context, viewerId, movieId string) error
}

// MovieLoggedNotifier is told about fresh records so friends can be notified.
type MovieLoggedNotifier interface {
	MovieLogged(userId, title string)
}

type MovieHandler struct {
	AuthHandler Handlers.TokenVerifier
	Store       MovieStore
	Notifier    MovieLoggedNotifier
	Log         *zap.SugaredLogger
	validate    *validator.Validate
}

func NewMovieHandler(authHandler Handlers.TokenVerifier, store MovieStore, notifier MovieLoggedNotifier, log *zap.SugaredLogger) *MovieHandler {
	return &MovieHandler{
		AuthHandler: authHandler,
		Store:       store,
		Notifier:    notifier,
		Log:         log,
		validate:    validator.New(),
	}
}

type logMovieRequest struct {
	Title       string  `json:"title" validate:"required"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Ratings     Ratings `json:"ratings"`
	Notes       string  `json:"notes"`
	Public      *bool   `json:"public"`
}

func (m *MovieHandler) LogMovieWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, m.AuthHandler, m.Log, http.MethodPost)
	if !authorized {
		return
	}

	var request logMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := m.validate.Struct(request); err != nil {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	isPublic := true
	if request.Public != nil {
		isPublic = *request.Public
	}
	movieId, err := m.Store.CreateMovie(r.Context(), token.UID, MovieRecord{
		Title:       request.Title,
		Overview:    request.Overview,
		PosterPath:  request.PosterPath,
		ReleaseDate: request.ReleaseDate,
		VoteAverage: request.VoteAverage,
		Ratings:     request.Ratings,
		Notes:       request.Notes,
		IsPublic:    isPublic,
	})
	if err != nil {
		m.Log.Errorf("failed to log movie: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if m.Notifier != nil {
		m.Notifier.MovieLogged(token.UID, request.Title)
	}

	Handlers.WriteJson(w, m.Log, map[string]string{"id": movieId})
}

func (m *MovieHandler) DeleteMovieWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, m.AuthHandler, m.Log, http.MethodPost)
	if !authorized {
		return
	}
	movieId := r.URL.Query().Get("movieId")
	if movieId == "" {
		http.Error(w, "Missing movieId", http.StatusBadRequest)
		return
	}

	if err := m.Store.DeleteMovie(r.Context(), token.UID, movieId); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "movie doesn't exist", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "not your movie", http.StatusForbidden)
		default:
			m.Log.Errorf("failed to delete movie: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
