package FirebaseHandlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMessenger struct {
	mu           sync.Mutex
	subscribed   [][2]string // token, topic
	unsubscribed [][2]string
	sent         []*messaging.Message
}

func (f *fakeMessenger) Send(_ context.Context, message *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message)
	return "message-id", nil
}

func (f *fakeMessenger) SubscribeToTopic(_ context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range tokens {
		f.subscribed = append(f.subscribed, [2]string{token, topic})
	}
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func (f *fakeMessenger) UnsubscribeFromTopic(_ context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range tokens {
		f.unsubscribed = append(f.unsubscribed, [2]string{token, topic})
	}
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func newFcmHandler(viewer UserProfile) (*FcmHandler, *fakeMessenger) {
	messenger := &fakeMessenger{}
	handler := &FcmHandler{
		AuthHandler: &fakeVerifier{uid: viewer.ID},
		Store:       newFakeFriendSource(viewer),
		Messaging:   messenger,
		Log:         zap.NewNop().Sugar(),
	}
	return handler, messenger
}

func TestAddedTokenWrapper(t *testing.T) {
	handler, messenger := newFcmHandler(UserProfile{ID: "viewer", Friends: []string{"f1", "f2"}})

	w := httptest.NewRecorder()
	handler.AddedTokenWrapper(w, authedRequest(http.MethodPost, "/notifications/token?token=device-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [][2]string{{"device-1", "f1"}, {"device-1", "f2"}}, messenger.subscribed)
}

func TestAddedTokenWrapperMissingToken(t *testing.T) {
	handler, messenger := newFcmHandler(UserProfile{ID: "viewer", Friends: []string{"f1"}})

	w := httptest.NewRecorder()
	handler.AddedTokenWrapper(w, authedRequest(http.MethodPost, "/notifications/token"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, messenger.subscribed)
}

func TestRemovedTokenWrapper(t *testing.T) {
	handler, messenger := newFcmHandler(UserProfile{ID: "viewer", Friends: []string{"f1", "f2"}})

	w := httptest.NewRecorder()
	handler.RemovedTokenWrapper(w, authedRequest(http.MethodPost, "/notifications/token/remove?token=device-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [][2]string{{"device-1", "f1"}, {"device-1", "f2"}}, messenger.unsubscribed)
	assert.Empty(t, messenger.subscribed)
}

func TestRemovedTokenWrapperMissingToken(t *testing.T) {
	handler, messenger := newFcmHandler(UserProfile{ID: "viewer", Friends: []string{"f1"}})

	w := httptest.NewRecorder()
	handler.RemovedTokenWrapper(w, authedRequest(http.MethodPost, "/notifications/token/remove"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, messenger.unsubscribed)
}

func TestSendNotificationToFriends(t *testing.T) {
	handler, messenger := newFcmHandler(UserProfile{ID: "viewer", Username: "flipper", Friends: []string{"f1"}})

	handler.sendNotificationToFriends(logEvent{UserId: "viewer", Title: "Blade Runner", LoggedAt: time.Now()})

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "viewer", messenger.sent[0].Topic)
	assert.Contains(t, messenger.sent[0].Data["message"], "flipper logged Blade Runner")
}

func TestSendNotificationSkipsFriendless(t *testing.T) {
	handler, messenger := newFcmHandler(UserProfile{ID: "viewer", Username: "flipper"})

	handler.sendNotificationToFriends(logEvent{UserId: "viewer", Title: "Blade Runner", LoggedAt: time.Now()})

	assert.Empty(t, messenger.sent)
}
