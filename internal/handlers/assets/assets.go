// Package assets exposes the parallel asset repositories (good copy, good
// scripts, creatives, prompt templates, BV prompts, ad campaigns) over HTTP.
package assets

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

// Handler serves every asset repository route.
type Handler struct {
	*server.App
}

// validCreativeTypes lists the creative asset kinds.
var validCreativeTypes = []string{
	models.CreativeImage, models.CreativeVideoTitle, models.CreativeLink,
}

// list writes the full collection, never null.
func list[T store.Entity](w http.ResponseWriter, c *store.Collection[T]) {
	items := c.All()
	if items == nil {
		items = []T{}
	}
	response.JSON(w, items)
}

// insert validates, inserts, audits, and writes the committed record.
func insert[T store.Entity](h *Handler, w http.ResponseWriter, r *http.Request, c *store.Collection[T], rec T, ve *validation.ValidationErrors, summary string) {
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	rec, err := c.Insert(rec)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionCreate, c.Key(), rec.GetID(), summary)
	response.JSON(w, rec)
}

// update applies a mutation, audits, and writes the committed record.
func update[T store.Entity](h *Handler, w http.ResponseWriter, r *http.Request, c *store.Collection[T], id string, apply func(T)) {
	rec, err := c.Update(id, apply)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Err(w, "not found", 404)
			return
		}
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionUpdate, c.Key(), id, "")
	response.JSON(w, rec)
}

// remove deletes by id; removing an absent id is a no-op.
func remove[T store.Entity](h *Handler, w http.ResponseWriter, r *http.Request, c *store.Collection[T], id string) {
	if err := c.Remove(id); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	h.Trail.Record(server.Username(r), audit.ActionDelete, c.Key(), id, "")
	response.JSON(w, map[string]string{"status": "ok"})
}

// goodAssets returns the collection behind a good-copy or good-script route.
func (h *Handler) goodAssets(kind string) *store.Collection[*models.GoodAsset] {
	if kind == store.KeyGoodScript {
		return h.Store.GoodScripts
	}
	return h.Store.GoodCopy
}

// ListGoodAssets handles GET for the good-copy and good-script repos.
func (h *Handler) ListGoodAssets(w http.ResponseWriter, r *http.Request, kind string) {
	list(w, h.goodAssets(kind))
}

// CreateGoodAsset handles POST for the good-copy and good-script repos.
func (h *Handler) CreateGoodAsset(w http.ResponseWriter, r *http.Request, kind string) {
	var a models.GoodAsset
	if err := response.DecodeBody(r, &a); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", a.Title)
	validation.RequireField(ve, "content", a.Content)
	insert(h, w, r, h.goodAssets(kind), &a, ve, "Added "+a.Title)
}

// UpdateGoodAsset handles PUT for the good-copy and good-script repos.
func (h *Handler) UpdateGoodAsset(w http.ResponseWriter, r *http.Request, kind, id string) {
	var body models.GoodAsset
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", body.Title)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	update(h, w, r, h.goodAssets(kind), id, func(a *models.GoodAsset) {
		a.Title = body.Title
		a.Category = body.Category
		a.Content = body.Content
		a.ProductIDs = body.ProductIDs
	})
}

// DeleteGoodAsset handles DELETE for the good-copy and good-script repos.
func (h *Handler) DeleteGoodAsset(w http.ResponseWriter, r *http.Request, kind, id string) {
	remove(h, w, r, h.goodAssets(kind), id)
}

// ListCreatives handles GET /api/v1/creatives.
func (h *Handler) ListCreatives(w http.ResponseWriter, r *http.Request) {
	list(w, h.Store.Creatives)
}

// CreateCreative handles POST /api/v1/creatives.
func (h *Handler) CreateCreative(w http.ResponseWriter, r *http.Request) {
	var a models.CreativeAsset
	if err := response.DecodeBody(r, &a); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", a.Title)
	validation.RequireField(ve, "value", a.Value)
	validation.ValidateEnum(ve, "type", a.Type, validCreativeTypes)
	insert(h, w, r, h.Store.Creatives, &a, ve, "Added "+a.Title)
}

// UpdateCreative handles PUT /api/v1/creatives/:id.
func (h *Handler) UpdateCreative(w http.ResponseWriter, r *http.Request, id string) {
	var body models.CreativeAsset
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", body.Title)
	validation.ValidateEnum(ve, "type", body.Type, validCreativeTypes)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	update(h, w, r, h.Store.Creatives, id, func(a *models.CreativeAsset) {
		a.Type = body.Type
		a.Title = body.Title
		a.Value = body.Value
		a.ProductIDs = body.ProductIDs
		a.Tags = body.Tags
	})
}

// DeleteCreative handles DELETE /api/v1/creatives/:id.
func (h *Handler) DeleteCreative(w http.ResponseWriter, r *http.Request, id string) {
	remove(h, w, r, h.Store.Creatives, id)
}

// prompts returns the collection behind a prompt or BV-prompt route.
func (h *Handler) prompts(kind string) *store.Collection[*models.PromptTemplate] {
	if kind == store.KeyBVPrompts {
		return h.Store.BVPrompts
	}
	return h.Store.Prompts
}

// ListPrompts handles GET for the prompt and BV-prompt repos.
func (h *Handler) ListPrompts(w http.ResponseWriter, r *http.Request, kind string) {
	list(w, h.prompts(kind))
}

// CreatePrompt handles POST for the prompt and BV-prompt repos.
func (h *Handler) CreatePrompt(w http.ResponseWriter, r *http.Request, kind string) {
	var t models.PromptTemplate
	if err := response.DecodeBody(r, &t); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", t.Title)
	validation.RequireField(ve, "content", t.Content)
	insert(h, w, r, h.prompts(kind), &t, ve, "Added "+t.Title)
}

// UpdatePrompt handles PUT for the prompt and BV-prompt repos.
func (h *Handler) UpdatePrompt(w http.ResponseWriter, r *http.Request, kind, id string) {
	var body models.PromptTemplate
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", body.Title)
	validation.RequireField(ve, "content", body.Content)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	update(h, w, r, h.prompts(kind), id, func(t *models.PromptTemplate) {
		t.Category = body.Category
		t.Title = body.Title
		t.Description = body.Description
		t.Content = body.Content
	})
}

// DeletePrompt handles DELETE for the prompt and BV-prompt repos.
func (h *Handler) DeletePrompt(w http.ResponseWriter, r *http.Request, kind, id string) {
	remove(h, w, r, h.prompts(kind), id)
}

// ListCampaigns handles GET /api/v1/campaigns.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	list(w, h.Store.Campaigns)
}

// CreateCampaign handles POST /api/v1/campaigns.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c models.AdCampaign
	if err := response.DecodeBody(r, &c); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", c.Title)
	validation.RequireField(ve, "productId", c.ProductID)
	insert(h, w, r, h.Store.Campaigns, &c, ve, "Added "+c.Title)
}

// UpdateCampaign handles PUT /api/v1/campaigns/:id.
func (h *Handler) UpdateCampaign(w http.ResponseWriter, r *http.Request, id string) {
	var body models.AdCampaign
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", body.Title)
	if ve.HasErrors() {
		response.ValidationErr(w, ve)
		return
	}
	update(h, w, r, h.Store.Campaigns, id, func(c *models.AdCampaign) {
		c.ProductID = body.ProductID
		c.Title = body.Title
		c.ScriptContent = body.ScriptContent
		c.VisualSegments = body.VisualSegments
		c.PlatformLinks = body.PlatformLinks
	})
}

// DeleteCampaign handles DELETE /api/v1/campaigns/:id.
func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request, id string) {
	remove(h, w, r, h.Store.Campaigns, id)
}
