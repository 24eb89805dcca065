// Package server holds the shared application dependencies and request
// context plumbing used by every handler package.
package server

import (
	"context"
	"net/http"

	"planpro/internal/audit"
	"planpro/internal/auth"
	"planpro/internal/models"
	"planpro/internal/store"
	"planpro/internal/websocket"
)

// ContextKey is the type used for request context keys.
type ContextKey string

const (
	// CtxUser carries the resolved *models.User for the request.
	CtxUser ContextKey = "user"
	// CtxToken carries the session token the identity was resolved from.
	CtxToken ContextKey = "token"
)

// App holds shared dependencies for the application.
type App struct {
	Store    *store.Store
	Sessions *auth.Manager
	Trail    *audit.Trail
	Hub      *websocket.Hub
}

// UserFrom returns the authenticated user stored on the request context,
// or nil when unauthenticated.
func UserFrom(r *http.Request) *models.User {
	u, _ := r.Context().Value(CtxUser).(*models.User)
	return u
}

// TokenFrom returns the session token stored on the request context.
func TokenFrom(r *http.Request) string {
	t, _ := r.Context().Value(CtxToken).(string)
	return t
}

// WithUser returns a request carrying the resolved identity.
func WithUser(r *http.Request, u *models.User, token string) *http.Request {
	ctx := context.WithValue(r.Context(), CtxUser, u)
	ctx = context.WithValue(ctx, CtxToken, token)
	return r.WithContext(ctx)
}

// Username returns the audit identity for the request.
func Username(r *http.Request) string {
	if u := UserFrom(r); u != nil {
		return u.Email
	}
	return "system"
}
