package FirebaseHandlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Miltondz/flipFilme/main/Handlers"
	"go.uber.org/zap"
)

// FriendStore is the slice of *Store the friend endpoints need.
type FriendStore interface {
	EnsureProfile(ctx context.Context, userId, email, username string) error
	UserProfile(ctx context.Context, userId string) (UserProfile, error)
	SearchUsers(ctx context.Context, viewerId, term string) ([]UserProfile, error)
	AddFriend(ctx context.Context, userId, friendId string) error
}

type FriendHandler struct {
	AuthHandler Handlers.TokenVerifier
	Store       FriendStore
	Feed        *FriendFeed
	Log         *zap.SugaredLogger
}

type createProfileRequest struct {
	Username string `json:"username"`
}

// CreateProfileWrapper bootstraps the caller's profile document after
// sign-up; without it the user can't be found or befriended. The email comes
// from the verified token, the username from the payload. Repeat calls are
// no-ops.
func (f *FriendHandler) CreateProfileWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, f.AuthHandler, f.Log, http.MethodPost)
	if !authorized {
		return
	}

	var request createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if request.Username == "" {
		http.Error(w, "Missing username", http.StatusBadRequest)
		return
	}

	email, _ := token.Claims["email"].(string)
	if err := f.Store.EnsureProfile(r.Context(), token.UID, email, request.Username); err != nil {
		f.Log.Errorf("failed to create profile: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (f *FriendHandler) AddFriendWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, f.AuthHandler, f.Log, http.MethodPost)
	if !authorized {
		return
	}
	friendId := r.URL.Query().Get("friendId")
	if friendId == "" {
		http.Error(w, "Missing friendId", http.StatusBadRequest)
		return
	}

	if err := f.Store.AddFriend(r.Context(), token.UID, friendId); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user doesn't exist", http.StatusNotFound)
			return
		}
		f.Log.Errorf("failed to add friend: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// FriendsWrapper resolves the viewer's friend ids into profiles. A friend
// whose profile can't be read is skipped, not an error.
func (f *FriendHandler) FriendsWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, f.AuthHandler, f.Log, http.MethodGet)
	if !authorized {
		return
	}

	profile, err := f.Store.UserProfile(r.Context(), token.UID)
	if err != nil {
		f.Log.Errorf("failed to get user: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	friends := make([]UserProfile, 0, len(profile.Friends))
	for _, friendId := range profile.Friends {
		friend, err := f.Store.UserProfile(r.Context(), friendId)
		if err != nil {
			f.Log.Warnf("failed to get friend %s: %v", friendId, err)
			continue
		}
		friends = append(friends, friend)
	}

	Handlers.WriteJson(w, f.Log, friends)
}

// FriendMoviesWrapper serves each friend's recent public movies, aggregated
// concurrently with per-friend failures tolerated.
func (f *FriendHandler) FriendMoviesWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, f.AuthHandler, f.Log, http.MethodGet)
	if !authorized {
		return
	}

	profile, err := f.Store.UserProfile(r.Context(), token.UID)
	if err != nil {
		f.Log.Errorf("failed to get user: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	movies := f.Feed.RecentMovies(r.Context(), token.UID, profile.Friends)
	Handlers.WriteJson(w, f.Log, movies)
}

// SearchUsersWrapper finds users by email prefix so they can be added as
// friends.
func (f *FriendHandler) SearchUsersWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, f.AuthHandler, f.Log, http.MethodGet)
	if !authorized {
		return
	}
	term := r.URL.Query().Get("term")
	if term == "" {
		http.Error(w, "Missing term", http.StatusBadRequest)
		return
	}

	users, err := f.Store.SearchUsers(r.Context(), token.UID, term)
	if err != nil {
		f.Log.Errorf("failed to search users: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []UserProfile{}
	}
	Handlers.WriteJson(w, f.Log, users)
}
