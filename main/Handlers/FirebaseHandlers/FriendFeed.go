package FirebaseHandlers

import (
	"context"
	"sync"

	"github.com/Miltondz/flipFilme/main/Handlers"
	"go.uber.org/zap"
)

// FriendRecentLimit caps how many records one friend contributes to the feed.
const FriendRecentLimit = 2

// FriendSource is the slice of *Store the aggregator needs.
type FriendSource interface {
	UserProfile(ctx context.Context, userId string) (UserProfile, error)
	RecentPublicMovies(ctx context.Context, ownerId string, ordered bool, limit int) ([]MovieRecord, error)
}

// FriendFeed assembles each friend's most recent public movies. Per-friend
// fetches run concurrently and fail independently: a friend whose fetch
// errors contributes an empty slice instead of aborting the rest.
type FriendFeed struct {
	Source FriendSource
	Log    *zap.SugaredLogger
}

// RecentMovies fans out one fetch per friend id and joins the results into a
// mapping from friend id to that friend's newest-first public records. The
// map is complete once every fetch has resolved; an unauthenticated viewer
// gets an empty map.
func (f *FriendFeed) RecentMovies(ctx context.Context, viewerId string, friendIds []string) map[string][]MovieRecord {
	result := make(map[string][]MovieRecord, len(friendIds))
	if viewerId == "" {
		return result
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, friendId := range friendIds {
		wg.Add(1)
		go func(friendId string) {
			defer wg.Done()
			movies := f.fetchFriend(ctx, viewerId, friendId)
			mu.Lock()
			result[friendId] = movies
			mu.Unlock()
		}(friendId)
	}
	wg.Wait()
	return result
}

// fetchFriend loads one friend's recent public movies. The viewer's profile
// is re-read first so a friendship dissolved since the ids were collected
// yields nothing rather than stale data.
func (f *FriendFeed) fetchFriend(ctx context.Context, viewerId, friendId string) []MovieRecord {
	if friendId == "" {
		return []MovieRecord{}
	}

	profile, err := f.Source.UserProfile(ctx, viewerId)
	if err != nil {
		f.Log.Warnf("failed to re-check friendship with %s: %v", friendId, err)
		return []MovieRecord{}
	}
	if !Handlers.ArrayContains(profile.Friends, friendId) {
		return []MovieRecord{}
	}

	movies, err := f.Source.RecentPublicMovies(ctx, friendId, true, FriendRecentLimit)
	if err != nil && IsMissingIndex(err) {
		movies, err = f.Source.RecentPublicMovies(ctx, friendId, false, 0)
		if err == nil {
			SortMoviesByCreatedAtDesc(movies)
			if len(movies) > FriendRecentLimit {
				movies = movies[:FriendRecentLimit]
			}
		}
	}
	if err != nil {
		f.Log.Warnf("failed to load movies for friend %s: %v", friendId, err)
		return []MovieRecord{}
	}
	if movies == nil {
		movies = []MovieRecord{}
	}
	return movies
}
