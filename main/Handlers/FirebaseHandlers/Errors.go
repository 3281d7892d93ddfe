package FirebaseHandlers

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrUnauthenticated is returned by write operations invoked without a
	// signed-in user. Read paths yield empty results instead.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrForbidden is returned when a caller touches a record they don't own.
	ErrForbidden = errors.New("not the record owner")

	ErrNotFound = errors.New("document not found")
)

// IsMissingIndex reports whether an error is firestore's signal that the
// composite index backing a filtered+sorted query does not exist. Feeds
// recover from it by falling back to an unordered query with a client-side
// sort; it is never surfaced to callers.
func IsMissingIndex(err error) bool {
	return status.Code(err) == codes.FailedPrecondition
}
