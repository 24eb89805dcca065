// Package session exposes the identity lifecycle endpoints: login, logout,
// restore, and self-registration.
package session

import (
	"errors"
	"net/http"

	"planpro/internal/audit"
	"planpro/internal/auth"
	"planpro/internal/response"
	"planpro/internal/server"
	"planpro/internal/store"
	"planpro/internal/validation"
)

// TokenCookie names the cookie carrying the session token.
const TokenCookie = "planpro_session"

// Handler serves /api/v1/auth.
type Handler struct {
	*server.App
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Login handles POST /api/v1/auth/login. Bad credentials are a 401;
// a pending or disabled account authenticates but may not enter, a 403.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	user, token, err := h.Sessions.Login(req.Email, req.Password, req.Remember)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Err(w, err.Error(), 401)
		case errors.Is(err, auth.ErrAccountPending), errors.Is(err, auth.ErrAccountDisabled):
			response.Err(w, err.Error(), 403)
		default:
			response.Err(w, err.Error(), 500)
		}
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.Trail.Record(user.Email, audit.ActionLogin, "auth", user.ID, "")
	response.JSON(w, map[string]interface{}{"user": user.Sanitized(), "token": token})
}

// Logout handles POST /api/v1/auth/logout. Both identity slots are cleared
// whether or not the token still resolves.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if u := h.Sessions.Resolve(token); u != nil {
		h.Trail.Record(u.Email, audit.ActionLogout, "auth", u.ID, "")
	}
	h.Sessions.Logout(token)
	http.SetCookie(w, &http.Cookie{
		Name:   TokenCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	response.JSON(w, map[string]string{"status": "ok"})
}

// Me handles GET /api/v1/auth/me: the startup restore. An unresolvable or
// no-longer-APPROVED identity yields a null user, not an error.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.Sessions.Resolve(tokenFromRequest(r))
	if user == nil {
		response.JSON(w, nil)
		return
	}
	response.JSON(w, user.Sanitized())
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/auth/register. New accounts start as
// PENDING members and must be approved before they can log in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "email", req.Email)
	validation.RequireField(ve, "name", req.Name)
	validation.RequireField(ve, "password", req.Password)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	user, err := h.Sessions.Register(h.Store, req.Email, req.Name, req.Title, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			response.Err(w, err.Error(), 409)
			return
		}
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(user.Email, audit.ActionCreate, store.KeyUsers, user.ID, "Registered")
	response.JSON(w, user.Sanitized())
}

// tokenFromRequest extracts the session token from the cookie or, for API
// clients, a bearer Authorization header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
