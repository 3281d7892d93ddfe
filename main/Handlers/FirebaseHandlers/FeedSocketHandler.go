package FirebaseHandlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Miltondz/flipFilme/main/Handlers"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FeedSocketHandler streams collection-feed snapshots over a websocket. The
// client gets the full, newest-first list on every change to its own movies.
type FeedSocketHandler struct {
	AuthHandler Handlers.TokenVerifier
	Source      FeedSource
	Log         *zap.SugaredLogger
	upgrader    websocket.Upgrader
}

func NewFeedSocketHandler(authHandler Handlers.TokenVerifier, source FeedSource, log *zap.SugaredLogger) *FeedSocketHandler {
	return &FeedSocketHandler{
		AuthHandler: authHandler,
		Source:      source,
		Log:         log,
		upgrader: websocket.Upgrader{
			// cross-origin is already policed by the cors middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *FeedSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// browsers can't set headers on websocket dials, so the token rides in
	// the query string
	idToken := r.URL.Query().Get("token")
	if idToken == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := h.AuthHandler.VerifyIDToken(r.Context(), idToken)
	if err != nil {
		h.Log.Warnf("error verifying ID token: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warnf("failed to upgrade connection: %v", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	feed := OpenCollectionFeed(context.Background(), h.Source, token.UID, h.Log)
	defer feed.Dispose()

	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case movies, ok := <-feed.Updates():
			if !ok {
				if feedErr := feed.Err(); feedErr != nil {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "failed to load movies"),
						feedDeadline())
				}
				return
			}
			if err := conn.WriteJSON(movies); err != nil {
				return
			}
		case <-disconnected:
			return
		}
	}
}

func feedDeadline() time.Time {
	return time.Now().Add(5 * time.Second)
}
