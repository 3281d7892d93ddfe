package Handlers

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// TokenVerifier is the slice of *auth.Client the handlers need.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

func ArrayContains(array []string, value string) bool {
	for _, v := range array {
		if v == value {
			return true
		}
	}
	return false
}

func AuthorizationWrapper(w http.ResponseWriter, r *http.Request, authHandler TokenVerifier, log *zap.SugaredLogger, method string) (bool, *auth.Token) {
	if r.Method == http.MethodOptions {
		_, _ = w.Write([]byte("OK"))
		return false, nil
	} else if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false, nil
	}
	idToken := r.Header.Get("Authorization")
	if idToken == "" {
		log.Info("no token found")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false, nil
	}
	token, err := authHandler.VerifyIDToken(r.Context(), idToken)
	if err != nil {
		log.Warnf("error verifying ID token: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false, nil
	}

	return true, token
}
