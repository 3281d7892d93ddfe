package FirebaseHandlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/Miltondz/flipFilme/main/Handlers"
	"go.uber.org/zap"
)

// notifyDelay batches several quickly logged movies into one notification.
const notifyDelay = 5 * time.Minute

// Messenger is the slice of *messaging.Client the notifier needs.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
}

// FcmHandler pushes "your friend logged a movie" notifications. Every user
// is a topic; clients subscribe their device tokens to each friend's topic.
type FcmHandler struct {
	AuthHandler Handlers.TokenVerifier
	Store       FriendSource
	Messaging   Messenger
	Log         *zap.SugaredLogger

	mutex   sync.Mutex
	pending map[string]logEvent
}

type logEvent struct {
	UserId   string
	Title    string
	LoggedAt time.Time
	Multiple bool
}

func (fcm *FcmHandler) SubscribeToUser(ctx context.Context, token, friendId string) {
	if token == "" {
		return
	}
	response, err := fcm.Messaging.SubscribeToTopic(ctx, []string{token}, friendId)
	if err != nil {
		fcm.Log.Errorf("failed to subscribe to topic: %v", err)
		return
	}
	fcm.Log.Debugf("%v tokens subscribed, %v failed", response.SuccessCount, response.FailureCount)
}

func (fcm *FcmHandler) UnsubscribeFromUser(ctx context.Context, token, topic string) {
	if token == "" {
		return
	}
	response, err := fcm.Messaging.UnsubscribeFromTopic(ctx, []string{token}, topic)
	if err != nil {
		fcm.Log.Warnf("failed to unsubscribe from topic: %v", err)
		return
	}
	fcm.Log.Debugf("%v tokens unsubscribed, %v failed", response.SuccessCount, response.FailureCount)
}

func (fcm *FcmHandler) sendNotificationToFriends(event logEvent) {
	profile, err := fcm.Store.UserProfile(context.Background(), event.UserId)
	if err != nil {
		fcm.Log.Warnf("failed to get user for notification: %v", err)
		return
	}
	if len(profile.Friends) == 0 {
		return
	}

	var content string
	if event.Multiple {
		content = fmt.Sprintf("%s logged %s and more. See what they watched!", profile.Username, event.Title)
	} else {
		content = fmt.Sprintf("%s logged %s. See what they watched!", profile.Username, event.Title)
	}
	result, err := fcm.Messaging.Send(context.Background(), &messaging.Message{
		Topic: event.UserId,
		Data: map[string]string{
			"title":   fmt.Sprintf("%s watched something.", profile.Username),
			"message": content,
		},
	})
	if err != nil {
		fcm.Log.Warnf("failed to send notification: %v", err)
		return
	}
	fcm.Log.Infof("successfully sent notification: %v", result)
}

// MovieLogged schedules a notification to the user's friends. Movies logged
// within notifyDelay of each other collapse into a single message.
func (fcm *FcmHandler) MovieLogged(userId, title string) {
	fcm.mutex.Lock()
	defer fcm.mutex.Unlock()
	if fcm.pending == nil {
		fcm.pending = make(map[string]logEvent)
	}

	if last, ok := fcm.pending[userId]; ok && time.Since(last.LoggedAt) < notifyDelay {
		last.Multiple = true
		fcm.pending[userId] = last
		return
	}

	event := logEvent{UserId: userId, Title: title, LoggedAt: time.Now()}
	fcm.pending[userId] = event
	time.AfterFunc(notifyDelay, func() {
		fcm.mutex.Lock()
		stored, ok := fcm.pending[userId]
		delete(fcm.pending, userId)
		fcm.mutex.Unlock()
		if ok {
			stored.LoggedAt = event.LoggedAt
			fcm.sendNotificationToFriends(stored)
		}
	})
}

// AddedTokenWrapper subscribes a fresh device token to every friend's topic.
func (fcm *FcmHandler) AddedTokenWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, fcm.AuthHandler, fcm.Log, http.MethodPost)
	if !authorized {
		return
	}
	notificationToken := r.URL.Query().Get("token")
	if notificationToken == "" {
		http.Error(w, "No token provided", http.StatusBadRequest)
		return
	}

	profile, err := fcm.Store.UserProfile(r.Context(), token.UID)
	if err != nil {
		fcm.Log.Errorf("failed to get user: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, friendId := range profile.Friends {
		fcm.Log.Debugf("subscribing to %s", friendId)
		fcm.SubscribeToUser(r.Context(), notificationToken, friendId)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// RemovedTokenWrapper detaches a device token from every friend's topic,
// called when the device signs out.
func (fcm *FcmHandler) RemovedTokenWrapper(w http.ResponseWriter, r *http.Request) {
	authorized, token := Handlers.AuthorizationWrapper(w, r, fcm.AuthHandler, fcm.Log, http.MethodPost)
	if !authorized {
		return
	}
	notificationToken := r.URL.Query().Get("token")
	if notificationToken == "" {
		http.Error(w, "No token provided", http.StatusBadRequest)
		return
	}

	profile, err := fcm.Store.UserProfile(r.Context(), token.UID)
	if err != nil {
		fcm.Log.Errorf("failed to get user: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, friendId := range profile.Friends {
		fcm.Log.Debugf("unsubscribing from %s", friendId)
		fcm.UnsubscribeFromUser(r.Context(), notificationToken, friendId)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
