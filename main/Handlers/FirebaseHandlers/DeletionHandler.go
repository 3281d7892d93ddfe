package FirebaseHandlers

import (
	"context"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/Miltondz/flipFilme/main/Handlers"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// DeletionHandler removes an account and everything attached to it: logged
// movies, friendship documents, the user's entry in other users' friends
// arrays, and the profile itself.
type DeletionHandler struct {
	AuthHandler Handlers.TokenVerifier
	FireStore   *firestore.Client
	Log         *zap.SugaredLogger
}

func (d *DeletionHandler) deleteUserMovies(ctx context.Context, userId string) {
	query := d.FireStore.Collection(moviesCollection).Where("userId", "==", userId)
	err := d.FireStore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(query)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.Log.Errorf("failed to delete movies: %v", err)
	}
}

func (d *DeletionHandler) deleteFriendships(ctx context.Context, userId string) {
	query := d.FireStore.Collection(friendshipsCollection).Where("users", "array-contains", userId)
	err := d.FireStore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(query)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.Log.Errorf("failed to delete friendships: %v", err)
	}
}

func (d *DeletionHandler) removeUserFromFriends(ctx context.Context, userId string) {
	query := d.FireStore.Collection(usersCollection).Where("friends", "array-contains", userId)
	err := d.FireStore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(query)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}
			d.Log.Debugf("removing user %v from friends of %v", userId, doc.Ref.ID)
			if err := tx.Update(doc.Ref, []firestore.Update{
				{Path: "friends", Value: firestore.ArrayRemove(userId)},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		d.Log.Errorf("failed to remove user from friends: %v", err)
	}
}

func (d *DeletionHandler) deleteProfile(ctx context.Context, userId string) {
	if _, err := d.FireStore.Collection(usersCollection).Doc(userId).Delete(ctx); err != nil {
		d.Log.Errorf("failed to delete user: %v", err)
	}
}

func (d *DeletionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, d.AuthHandler, d.Log, http.MethodPost)
	if !authorized {
		return
	}

	d.deleteUserMovies(r.Context(), token.UID)
	d.deleteFriendships(r.Context(), token.UID)
	d.removeUserFromFriends(r.Context(), token.UID)
	d.deleteProfile(r.Context(), token.UID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
