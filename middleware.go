package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"planpro/internal/handlers/session"
	"planpro/internal/response"
	"planpro/internal/server"
)

// logging adds CORS headers, answers preflights, and logs each request.
func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// requireAuth resolves the session token into a user and attaches it to the
// request context. Auth endpoints pass through unresolved; everything else
// under /api/v1/ needs a resolvable identity. Module-level access checks
// happen in the router once the identity is known.
func requireAuth(app *server.App, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if strings.HasPrefix(path, "/api/v1/auth/") {
			next.ServeHTTP(w, r)
			return
		}

		token := sessionToken(r)
		user := app.Sessions.Resolve(token)
		if user == nil && strings.HasPrefix(path, "/api/v1/") {
			response.Err(w, "unauthorized", 401)
			return
		}
		next.ServeHTTP(w, server.WithUser(r, user, token))
	})
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(session.TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimPrefix(h, prefix)
	}
	return ""
}
