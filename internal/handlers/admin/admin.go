// Package admin exposes the user directory, job titles, and audit trail.
// Every route here requires the ADMIN role; the gate lives in the router.
package admin

import (
	"errors"
	"net/http"

	"planpro/internal/audit"
	"planpro/internal/models"
	"planpro/internal/response"
	"planpro/internal/server"
	"planpro/internal/store"
	"planpro/internal/validation"
)

// Handler serves /api/v1/users, /api/v1/job-titles, and /api/v1/audit.
type Handler struct {
	*server.App
}

// ListUsers handles GET /api/v1/users. Password hashes never leave the
// server.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.Store.Users.All()
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	response.JSON(w, out)
}

var validRoles = []string{models.RoleAdmin, models.RoleMember}
var validStatuses = []string{models.StatusApproved, models.StatusPending, models.StatusDisabled}

// userRequest carries the admin-editable user fields. Pointer fields left
// nil keep the stored value.
type userRequest struct {
	Name        *string                 `json:"name"`
	Title       *string                 `json:"title"`
	Role        *string                 `json:"role"`
	Status      *string                 `json:"status"`
	Permissions *models.UserPermissions `json:"permissions"`
}

// UpdateUser handles PUT /api/v1/users/:id. The bootstrap administrator is
// never demoted or disabled.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request, id string) {
	var req userRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	if req.Role != nil {
		validation.ValidateEnum(ve, "role", *req.Role, validRoles)
	}
	if req.Status != nil {
		validation.ValidateEnum(ve, "status", *req.Status, validStatuses)
	}
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	if id == store.BootstrapAdminID {
		if (req.Role != nil && *req.Role != models.RoleAdmin) ||
			(req.Status != nil && *req.Status != models.StatusApproved) {
			response.Err(w, "bootstrap administrator cannot be demoted or disabled", 403)
			return
		}
	}
	u, err := h.Store.Users.Update(id, func(u *models.User) {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Title != nil {
			u.Title = *req.Title
		}
		if req.Role != nil {
			u.Role = *req.Role
		}
		if req.Status != nil {
			u.Status = *req.Status
		}
		if req.Permissions != nil {
			u.Permissions = *req.Permissions
		}
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Err(w, "not found", 404)
			return
		}
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionUpdate, store.KeyUsers, id, "Updated user "+u.Email)
	response.JSON(w, u.Sanitized())
}

// DeleteUser handles DELETE /api/v1/users/:id. Deleting the bootstrap
// administrator is refused; a removed user's sessions die on their next
// re-resolution against the directory.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if id == store.BootstrapAdminID {
		response.Err(w, "bootstrap administrator cannot be removed", 403)
		return
	}
	if err := h.Store.RemoveUser(id); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionDelete, store.KeyUsers, id, "")
	response.JSON(w, map[string]string{"status": "ok"})
}

// ListJobTitles handles GET /api/v1/job-titles.
func (h *Handler) ListJobTitles(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.Store.JobTitles())
}

// SetJobTitles handles PUT /api/v1/job-titles, replacing the whole list.
func (h *Handler) SetJobTitles(w http.ResponseWriter, r *http.Request) {
	var titles []string
	if err := response.DecodeBody(r, &titles); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	if err := h.Store.SetJobTitles(titles); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionUpdate, store.KeyJobTitles, "", "Replaced job title list")
	response.JSON(w, titles)
}

// ListAudit handles GET /api/v1/audit, newest entries first.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.Trail.Entries())
}
