package FirebaseHandlers

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MovieSnapshots is a live stream of full result sets for one query. Next
// blocks until the store delivers the next snapshot.
type MovieSnapshots interface {
	Next() ([]MovieRecord, error)
	Stop()
}

// FeedSource opens snapshot streams; *Store implements it.
type FeedSource interface {
	SubscribeOwner(ctx context.Context, ownerId string, ordered bool) MovieSnapshots
}

// CollectionFeed is a live, newest-first view of one user's logged movies.
//
// It subscribes to the ordered query and, if the store reports the composite
// index as missing, retries once with the unordered query and sorts each
// snapshot itself. Any other subscription error is terminal: the updates
// channel is closed and Err returns the cause. Callers own the feed's
// lifetime and must call Dispose when done with it.
type CollectionFeed struct {
	updates chan []MovieRecord
	cancel  context.CancelFunc
	log     *zap.SugaredLogger

	mu       sync.Mutex
	disposed bool
	closed   bool
	err      error
}

// OpenCollectionFeed starts the subscription for userId. An empty userId
// (signed-out caller) yields a feed that is already drained: no subscription
// is opened and the updates channel is closed.
func OpenCollectionFeed(ctx context.Context, source FeedSource, userId string, log *zap.SugaredLogger) *CollectionFeed {
	feed := &CollectionFeed{
		updates: make(chan []MovieRecord, 1),
		cancel:  func() {},
		log:     log,
	}
	if userId == "" {
		feed.closed = true
		close(feed.updates)
		return feed
	}

	ctx, cancel := context.WithCancel(ctx)
	feed.cancel = cancel
	go feed.run(ctx, source, userId)
	return feed
}

// Updates delivers one full, descending-by-createdAt snapshot per store
// notification. A snapshot that was never received may be replaced by a newer
// one; the channel is closed when the feed ends.
func (f *CollectionFeed) Updates() <-chan []MovieRecord {
	return f.updates
}

// Err reports the terminal failure, if any, once Updates is closed.
func (f *CollectionFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Dispose cancels the subscription. No snapshot is delivered after it
// returns, even if the underlying stream races in one more notification.
func (f *CollectionFeed) Dispose() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.disposed = true
	// discard a snapshot the caller never received; it must not surface
	// after disposal
	select {
	case <-f.updates:
	default:
	}
	f.mu.Unlock()
	f.cancel()
}

func (f *CollectionFeed) run(ctx context.Context, source FeedSource, userId string) {
	defer f.finish()

	sub := source.SubscribeOwner(ctx, userId, true)
	fellBack := false
	for {
		movies, err := sub.Next()
		if err != nil {
			sub.Stop()
			if ctx.Err() != nil {
				return
			}
			if !fellBack && IsMissingIndex(err) {
				f.log.Infof("ordered movie query needs a missing index, sorting client side: %v", err)
				fellBack = true
				sub = source.SubscribeOwner(ctx, userId, false)
				continue
			}
			f.fail(err)
			return
		}

		for i := range movies {
			movies[i].Ratings = movies[i].Ratings.Clamp()
		}
		if fellBack {
			SortMoviesByCreatedAtDesc(movies)
		}
		f.publish(movies)
	}
}

func (f *CollectionFeed) publish(movies []MovieRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed || f.closed {
		return
	}
	select {
	case f.updates <- movies:
	default:
		// drop the superseded snapshot still sitting in the buffer
		select {
		case <-f.updates:
		default:
		}
		select {
		case f.updates <- movies:
		default:
		}
	}
}

func (f *CollectionFeed) fail(err error) {
	f.log.Errorf("movie feed failed: %v", err)
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *CollectionFeed) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.updates)
	}
}
