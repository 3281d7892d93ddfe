package FirebaseHandlers

import (
	"sort"
	"strings"
	"time"
)

const (
	usersCollection       = "users"
	moviesCollection      = "movies"
	friendshipsCollection = "friendships"
)

// Ratings are the four dimensions a logged movie is scored on, each in [0,5].
type Ratings struct {
	Story  int `firestore:"story" json:"story"`
	Looks  int `firestore:"looks" json:"looks"`
	Feels  int `firestore:"feels" json:"feels"`
	Sounds int `firestore:"sounds" json:"sounds"`
}

// MovieRecord is a logged viewing event. Catalog metadata is copied in at
// creation time and never re-synced.
type MovieRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`
	PosterPath  string    `json:"posterPath"`
	ReleaseDate string    `json:"releaseDate"`
	VoteAverage float64   `json:"voteAverage"`
	Ratings     Ratings   `json:"ratings"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	IsPublic    bool      `json:"isPublic"`
}

// movieDoc mirrors the firestore document layout. Ratings are kept loose so
// malformed values written by older clients can be normalized on read.
type movieDoc struct {
	OwnerID     string         `firestore:"userId"`
	Title       string         `firestore:"title"`
	Overview    string         `firestore:"overview"`
	PosterPath  string         `firestore:"poster_path"`
	ReleaseDate string         `firestore:"release_date"`
	VoteAverage float64        `firestore:"vote_average"`
	Ratings     map[string]any `firestore:"ratings"`
	Notes       string         `firestore:"notes"`
	CreatedAt   time.Time      `firestore:"createdAt,serverTimestamp"`
	Public      bool           `firestore:"public"`
}

type UserProfile struct {
	ID        string    `firestore:"-" json:"id"`
	Email     string    `firestore:"email" json:"email"`
	Username  string    `firestore:"username" json:"username"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	Friends   []string  `firestore:"friends" json:"friends"`
}

// Friendship is the materialized symmetric relation between two users,
// keyed by the sorted pair of their ids.
type Friendship struct {
	Users     []string  `firestore:"users"`
	Status    string    `firestore:"status"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// FriendshipKey builds the canonical order-independent document id for a
// two-party relation.
func FriendshipKey(userId, friendId string) string {
	pair := []string{userId, friendId}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

const maxRating = 5

// clampRating coerces a raw firestore value into the [0,maxRating] range.
// Non-numeric and negative values become 0.
func clampRating(value any) int {
	var rating int
	switch v := value.(type) {
	case int:
		rating = v
	case int64:
		rating = int(v)
	case float64:
		rating = int(v)
	default:
		return 0
	}
	if rating < 0 {
		return 0
	}
	if rating > maxRating {
		return maxRating
	}
	return rating
}

// NormalizeRatings applies one clamp policy to all four dimensions. Missing
// keys default to 0.
func NormalizeRatings(raw map[string]any) Ratings {
	return Ratings{
		Story:  clampRating(raw["story"]),
		Looks:  clampRating(raw["looks"]),
		Feels:  clampRating(raw["feels"]),
		Sounds: clampRating(raw["sounds"]),
	}
}

// Clamp re-applies the write-time clamp, used on records built from request
// payloads before they are persisted.
func (r Ratings) Clamp() Ratings {
	return Ratings{
		Story:  clampRating(r.Story),
		Looks:  clampRating(r.Looks),
		Feels:  clampRating(r.Feels),
		Sounds: clampRating(r.Sounds),
	}
}

// SortMoviesByCreatedAtDesc orders newest first, the feed ordering used when
// the store could not apply the sort server side.
func SortMoviesByCreatedAtDesc(movies []MovieRecord) {
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].CreatedAt.After(movies[j].CreatedAt)
	})
}
