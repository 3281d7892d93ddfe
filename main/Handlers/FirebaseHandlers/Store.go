package FirebaseHandlers

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const userSearchLimit = 10

// Store wraps the firestore client with the queries the feeds and handlers
// run. Callers pass the acting user id explicitly; the store never reads
// ambient auth state.
type Store struct {
	Client *firestore.Client
	Log    *zap.SugaredLogger
}

func NewStore(client *firestore.Client, log *zap.SugaredLogger) *Store {
	return &Store{Client: client, Log: log}
}

func (s *Store) UserProfile(ctx context.Context, userId string) (UserProfile, error) {
	doc, err := s.Client.Collection(usersCollection).Doc(userId).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return UserProfile{}, ErrNotFound
		}
		return UserProfile{}, fmt.Errorf("failed to get user %s: %w", userId, err)
	}
	var profile UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return UserProfile{}, fmt.Errorf("failed to convert user data: %w", err)
	}
	profile.ID = doc.Ref.ID
	return profile, nil
}

// EnsureProfile writes the users document for a freshly signed-up user with
// an empty friends set. An existing profile is left untouched, so clients may
// call this on every sign-in.
func (s *Store) EnsureProfile(ctx context.Context, userId, email, username string) error {
	if userId == "" {
		return ErrUnauthenticated
	}
	_, err := s.Client.Collection(usersCollection).Doc(userId).Create(ctx, UserProfile{
		Email:     email,
		Username:  username,
		CreatedAt: time.Now(),
		Friends:   []string{},
	})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("failed to create user %s: %w", userId, err)
	}
	return nil
}

// SearchUsers finds profiles whose email starts with term, excluding the
// viewer. "\uf8ff" sorts after every character that can follow the prefix, so
// the pair of range filters forms a prefix match.
func (s *Store) SearchUsers(ctx context.Context, viewerId, term string) ([]UserProfile, error) {
	if viewerId == "" {
		return nil, ErrUnauthenticated
	}
	iter := s.Client.Collection(usersCollection).
		Where("email", ">=", term).
		Where("email", "<=", term+"\uf8ff").
		Limit(userSearchLimit).
		Documents(ctx)
	defer iter.Stop()

	var profiles []UserProfile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to search users: %w", err)
		}
		if doc.Ref.ID == viewerId {
			continue
		}
		var profile UserProfile
		if err := doc.DataTo(&profile); err != nil {
			s.Log.Warnf("failed to convert user data for %s: %v", doc.Ref.ID, err)
			continue
		}
		profile.ID = doc.Ref.ID
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// AddFriend establishes the symmetric friendship in one transaction: the
// friendship document plus both friends arrays. Set-overwrite and ArrayUnion
// make a repeated call converge on the same state.
func (s *Store) AddFriend(ctx context.Context, userId, friendId string) error {
	if userId == "" {
		return ErrUnauthenticated
	}
	if friendId == "" || friendId == userId {
		return fmt.Errorf("invalid friend id %q", friendId)
	}

	userRef := s.Client.Collection(usersCollection).Doc(userId)
	friendRef := s.Client.Collection(usersCollection).Doc(friendId)
	friendshipRef := s.Client.Collection(friendshipsCollection).Doc(FriendshipKey(userId, friendId))

	return s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(userRef); err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if _, err := tx.Get(friendRef); err != nil {
			return fmt.Errorf("failed to get friend: %w", err)
		}

		pair := []string{userId, friendId}
		if pair[0] > pair[1] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		if err := tx.Set(friendshipRef, Friendship{
			Users:     pair,
			Status:    "active",
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		if err := tx.Update(userRef, []firestore.Update{
			{Path: "friends", Value: firestore.ArrayUnion(friendId)},
		}); err != nil {
			return err
		}
		return tx.Update(friendRef, []firestore.Update{
			{Path: "friends", Value: firestore.ArrayUnion(userId)},
		})
	})
}

// CreateMovie persists a new record for ownerId and returns the document id.
// Ratings are clamped before the write; createdAt is assigned by the store.
func (s *Store) CreateMovie(ctx context.Context, ownerId string, record MovieRecord) (string, error) {
	if ownerId == "" {
		return "", ErrUnauthenticated
	}
	ratings := record.Ratings.Clamp()
	doc := movieDoc{
		OwnerID:     ownerId,
		Title:       record.Title,
		Overview:    record.Overview,
		PosterPath:  record.PosterPath,
		ReleaseDate: record.ReleaseDate,
		VoteAverage: record.VoteAverage,
		Ratings: map[string]any{
			"story":  ratings.Story,
			"looks":  ratings.Looks,
			"feels":  ratings.Feels,
			"sounds": ratings.Sounds,
		},
		Notes:  record.Notes,
		Public: record.IsPublic,
	}

	movieId := uuid.NewString()
	if _, err := s.Client.Collection(moviesCollection).Doc(movieId).Create(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create movie: %w", err)
	}
	return movieId, nil
}

func (s *Store) GetMovie(ctx context.Context, movieId string) (MovieRecord, error) {
	doc, err := s.Client.Collection(moviesCollection).Doc(movieId).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return MovieRecord{}, ErrNotFound
		}
		return MovieRecord{}, fmt.Errorf("failed to get movie %s: %w", movieId, err)
	}
	return s.decodeMovie(doc), nil
}

// DeleteMovie removes a record, owner only.
func (s *Store) DeleteMovie(ctx context.Context, viewerId, movieId string) error {
	if viewerId == "" {
		return ErrUnauthenticated
	}
	movie, err := s.GetMovie(ctx, movieId)
	if err != nil {
		return err
	}
	if movie.OwnerID != viewerId {
		return ErrForbidden
	}
	if _, err := s.Client.Collection(moviesCollection).Doc(movieId).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete movie %s: %w", movieId, err)
	}
	return nil
}

// RecentPublicMovies fetches a friend's public records. With ordered set the
// store sorts and limits server side, which needs the composite index; the
// unordered variant returns everything matching the filters and the caller
// sorts and caps.
func (s *Store) RecentPublicMovies(ctx context.Context, ownerId string, ordered bool, limit int) ([]MovieRecord, error) {
	query := s.Client.Collection(moviesCollection).
		Where("userId", "==", ownerId).
		Where("public", "==", true)
	if ordered {
		query = query.OrderBy("createdAt", firestore.Desc).Limit(limit)
	}
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	movies := make([]MovieRecord, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, s.decodeMovie(doc))
	}
	return movies, nil
}

// SubscribeOwner opens a live snapshot stream over all of ownerId's records.
func (s *Store) SubscribeOwner(ctx context.Context, ownerId string, ordered bool) MovieSnapshots {
	query := s.Client.Collection(moviesCollection).Where("userId", "==", ownerId)
	if ordered {
		query = query.OrderBy("createdAt", firestore.Desc)
	}
	return &firestoreMovieSnapshots{iter: query.Snapshots(ctx), store: s}
}

type firestoreMovieSnapshots struct {
	iter  *firestore.QuerySnapshotIterator
	store *Store
}

func (f *firestoreMovieSnapshots) Next() ([]MovieRecord, error) {
	snap, err := f.iter.Next()
	if err != nil {
		return nil, err
	}
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, err
	}
	movies := make([]MovieRecord, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, f.store.decodeMovie(doc))
	}
	return movies, nil
}

func (f *firestoreMovieSnapshots) Stop() {
	f.iter.Stop()
}

func (s *Store) decodeMovie(doc *firestore.DocumentSnapshot) MovieRecord {
	var raw movieDoc
	if err := doc.DataTo(&raw); err != nil {
		s.Log.Warnf("failed to convert movie data for %s: %v", doc.Ref.ID, err)
	}
	createdAt := raw.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return MovieRecord{
		ID:          doc.Ref.ID,
		OwnerID:     raw.OwnerID,
		Title:       raw.Title,
		Overview:    raw.Overview,
		PosterPath:  raw.PosterPath,
		ReleaseDate: raw.ReleaseDate,
		VoteAverage: raw.VoteAverage,
		Ratings:     NormalizeRatings(raw.Ratings),
		Notes:       raw.Notes,
		CreatedAt:   createdAt,
		IsPublic:    raw.Public,
	}
}
