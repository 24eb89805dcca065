// Package settings exposes the field schema registry and the product
// category list over HTTP.
package settings

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"planpro/internal/audit"
	"planpro/internal/response"
	"planpro/internal/schema"
	"planpro/internal/server"
	"planpro/internal/store"
)

// Handler serves /api/v1/fields and /api/v1/categories.
type Handler struct {
	*server.App
}

// ListFields handles GET /api/v1/fields.
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.Store.FieldDefs())
}

// CreateField handles POST /api/v1/fields. The server assigns the id; a
// name collision with a live field is a conflict.
func (h *Handler) CreateField(w http.ResponseWriter, r *http.Request) {
	var def schema.FieldDefinition
	if err := response.DecodeBody(r, &def); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	if ve := schema.ValidateDefinition(def); ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	def.ID = "f_" + uuid.NewString()
	if err := h.Store.AddField(def); err != nil {
		if errors.Is(err, schema.ErrDuplicateFieldName) {
			response.Err(w, err.Error(), 409)
			return
		}
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionCreate, store.KeyFields, def.ID, "Added field "+def.Name)
	response.JSON(w, def)
}

// UpdateField handles PUT /api/v1/fields/:id. The id is immutable; renaming
// onto another live field is a conflict.
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request, id string) {
	var def schema.FieldDefinition
	if err := response.DecodeBody(r, &def); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	if ve := schema.ValidateDefinition(def); ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	if err := h.Store.UpdateField(id, def); err != nil {
		switch {
		case errors.Is(err, schema.ErrFieldNotFound):
			response.Err(w, "not found", 404)
		case errors.Is(err, schema.ErrDuplicateFieldName):
			response.Err(w, err.Error(), 409)
		default:
			response.Err(w, err.Error(), 500)
		}
		return
	}
	def.ID = id
	h.Trail.Record(server.Username(r), audit.ActionUpdate, store.KeyFields, id, "Updated field "+def.Name)
	response.JSON(w, def)
}

// DeleteField handles DELETE /api/v1/fields/:id. Removal is soft: product
// attribute values stored under the removed name stay in place.
func (h *Handler) DeleteField(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Store.RemoveField(id); err != nil {
		if errors.Is(err, schema.ErrFieldNotFound) {
			response.Err(w, "not found", 404)
			return
		}
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionDelete, store.KeyFields, id, "")
	response.JSON(w, map[string]string{"status": "ok"})
}

// ReplaceFields handles PUT /api/v1/fields, used by the settings editor to
// reorder the registry.
func (h *Handler) ReplaceFields(w http.ResponseWriter, r *http.Request) {
	var fields []schema.FieldDefinition
	if err := response.DecodeBody(r, &fields); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	for _, def := range fields {
		if ve := schema.ValidateDefinition(def); ve.HasErrors() {
			response.ValidationErr(w, ve)
			return
		}
	}
	if err := h.Store.ReplaceFields(fields); err != nil {
		if errors.Is(err, schema.ErrDuplicateFieldName) {
			response.Err(w, err.Error(), 409)
			return
		}
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionUpdate, store.KeyFields, "", "Replaced field list")
	response.JSON(w, fields)
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.Store.Categories())
}

// SetCategories handles PUT /api/v1/categories, replacing the whole list.
func (h *Handler) SetCategories(w http.ResponseWriter, r *http.Request) {
	var categories []string
	if err := response.DecodeBody(r, &categories); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	if err := h.Store.SetCategories(categories); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionUpdate, store.KeyCategories, "", "Replaced category list")
	response.JSON(w, categories)
}
