package ui

import (
	"context"
	"net/http"
	"strings"

	"quizforge/models"
)

type contextKey string

const userContextKey contextKey = "user"

const tokenCookieName = "access_token"

// requireUser resolves the access token from the request and attaches the
// authenticated user to the context. Requests without a valid token are
// rejected before reaching the handler.
func (a *App) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.auth.CurrentUser(r.Context(), tokenFromRequest(r))
		if err != nil {
			a.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest prefers the auth cookie and falls back to a bearer
// Authorization header for non-browser clients.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(tokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
