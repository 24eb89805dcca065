// Package products exposes the product collection over HTTP.
package products

import (
	"encoding/json"
	"errors"
	"net/http"

	"planpro/internal/audit"
	"planpro/internal/models"
	"planpro/internal/response"
	"planpro/internal/server"
	"planpro/internal/store"
	"planpro/internal/validation"
)

// Handler serves /api/v1/products.
type Handler struct {
	*server.App
}

// List handles GET /api/v1/products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items := h.Store.Products.All()
	if items == nil {
		items = []*models.Product{}
	}
	response.JSON(w, items)
}

// Get handles GET /api/v1/products/:id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := h.Store.Products.Get(id)
	if !ok {
		response.Err(w, "not found", 404)
		return
	}
	response.JSON(w, p)
}

type productRequest struct {
	Name       string                     `json:"name"`
	Attributes map[string]json.RawMessage `json:"attributes"`
}

// Create handles POST /api/v1/products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	p, err := h.Store.InsertProduct(&models.Product{Name: req.Name, Attributes: req.Attributes})
	if err != nil {
		var ve *validation.ValidationErrors
		if errors.As(err, &ve) {
			response.ValidationErr(w, ve)
			return
		}
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionCreate, store.KeyProducts, p.ID, "Created "+p.Name)
	response.JSON(w, p)
}

// Update handles PUT /api/v1/products/:id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req productRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	p, err := h.Store.UpdateProduct(id, req.Name, req.Attributes)
	if err != nil {
		var ve *validation.ValidationErrors
		switch {
		case errors.Is(err, store.ErrNotFound):
			response.Err(w, "not found", 404)
		case errors.As(err, &ve):
			response.ValidationErr(w, ve)
		default:
			response.Err(w, err.Error(), 500)
		}
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionUpdate, store.KeyProducts, p.ID, "Updated "+p.Name)
	response.JSON(w, p)
}

// Delete handles DELETE /api/v1/products/:id. Deletion is idempotent and
// leaves asset references to the product in place.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Store.RemoveProduct(id); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionDelete, store.KeyProducts, id, "")
	response.JSON(w, map[string]string{"status": "ok"})
}
