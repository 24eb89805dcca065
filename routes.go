package main

import (
	"net/http"
	"strings"

	"planpro/internal/auth"
	"planpro/internal/handlers/admin"
	"planpro/internal/handlers/assets"
	"planpro/internal/handlers/dashboard"
	"planpro/internal/handlers/products"
	"planpro/internal/handlers/session"
	"planpro/internal/handlers/settings"
	"planpro/internal/models"
	"planpro/internal/response"
	"planpro/internal/server"
	"planpro/internal/store"
	"planpro/internal/websocket"
)

// allow gates a route on the caller's module permission; mutating routes
// pass LevelEdit, reads pass LevelView.
func allow(w http.ResponseWriter, r *http.Request, module string, desired models.AccessLevel) bool {
	if auth.CanAccess(server.UserFrom(r), module, desired) {
		return true
	}
	response.Err(w, "forbidden", 403)
	return false
}

// allowAdmin gates the user-management routes on the ADMIN role.
func allowAdmin(w http.ResponseWriter, r *http.Request) bool {
	if auth.CanManageUsers(server.UserFrom(r)) {
		return true
	}
	response.Err(w, "forbidden", 403)
	return false
}

// level maps an HTTP method to the access it needs.
func level(method string) models.AccessLevel {
	if method == "GET" {
		return models.LevelView
	}
	return models.LevelEdit
}

func registerRoutes(mux *http.ServeMux, app *server.App) {
	sessionH := &session.Handler{App: app}
	productsH := &products.Handler{App: app}
	assetsH := &assets.Handler{App: app}
	settingsH := &settings.Handler{App: app}
	adminH := &admin.Handler{App: app}
	dashboardH := &dashboard.Handler{App: app}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if server.UserFrom(r) == nil {
			response.Err(w, "unauthorized", 401)
			return
		}
		websocket.Serve(app.Hub, w, r)
	})

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
		path = strings.TrimSuffix(path, "/")
		parts := strings.Split(path, "/")

		switch {
		// Identity lifecycle
		case path == "auth/login" && r.Method == "POST":
			sessionH.Login(w, r)
		case path == "auth/logout" && r.Method == "POST":
			sessionH.Logout(w, r)
		case path == "auth/me" && r.Method == "GET":
			sessionH.Me(w, r)
		case path == "auth/register" && r.Method == "POST":
			sessionH.Register(w, r)

		// Dashboard
		case path == "dashboard" && r.Method == "GET":
			if allow(w, r, models.ModuleDashboard, models.LevelView) {
				dashboardH.Summary(w, r)
			}

		// Products
		case path == "products/export" && r.Method == "GET":
			if allow(w, r, models.ModuleProducts, models.LevelView) {
				productsH.Export(w, r)
			}
		case parts[0] == "products" && len(parts) == 1 && r.Method == "GET":
			if allow(w, r, models.ModuleProducts, models.LevelView) {
				productsH.List(w, r)
			}
		case parts[0] == "products" && len(parts) == 1 && r.Method == "POST":
			if allow(w, r, models.ModuleProducts, models.LevelEdit) {
				productsH.Create(w, r)
			}
		case parts[0] == "products" && len(parts) == 2 && r.Method == "GET":
			if allow(w, r, models.ModuleProducts, models.LevelView) {
				productsH.Get(w, r, parts[1])
			}
		case parts[0] == "products" && len(parts) == 2 && r.Method == "PUT":
			if allow(w, r, models.ModuleProducts, models.LevelEdit) {
				productsH.Update(w, r, parts[1])
			}
		case parts[0] == "products" && len(parts) == 2 && r.Method == "DELETE":
			if allow(w, r, models.ModuleProducts, models.LevelEdit) {
				productsH.Delete(w, r, parts[1])
			}

		// Field schema registry
		case parts[0] == "fields" && len(parts) == 1 && r.Method == "GET":
			if allow(w, r, models.ModuleSettings, models.LevelView) {
				settingsH.ListFields(w, r)
			}
		case parts[0] == "fields" && len(parts) == 1 && r.Method == "POST":
			if allow(w, r, models.ModuleSettings, models.LevelEdit) {
				settingsH.CreateField(w, r)
			}
		case parts[0] == "fields" && len(parts) == 1 && r.Method == "PUT":
			if allow(w, r, models.ModuleSettings, models.LevelEdit) {
				settingsH.ReplaceFields(w, r)
			}
		case parts[0] == "fields" && len(parts) == 2 && r.Method == "PUT":
			if allow(w, r, models.ModuleSettings, models.LevelEdit) {
				settingsH.UpdateField(w, r, parts[1])
			}
		case parts[0] == "fields" && len(parts) == 2 && r.Method == "DELETE":
			if allow(w, r, models.ModuleSettings, models.LevelEdit) {
				settingsH.DeleteField(w, r, parts[1])
			}

		// Categories
		case parts[0] == "categories" && len(parts) == 1 && r.Method == "GET":
			if allow(w, r, models.ModuleSettings, models.LevelView) {
				settingsH.ListCategories(w, r)
			}
		case parts[0] == "categories" && len(parts) == 1 && r.Method == "PUT":
			if allow(w, r, models.ModuleSettings, models.LevelEdit) {
				settingsH.SetCategories(w, r)
			}

		// Good copy / good scripts
		case parts[0] == "good-copy" && len(parts) == 1:
			serveGoodAssets(w, r, assetsH, models.ModuleCopyRepo, store.KeyGoodCopy, "")
		case parts[0] == "good-copy" && len(parts) == 2:
			serveGoodAssets(w, r, assetsH, models.ModuleCopyRepo, store.KeyGoodCopy, parts[1])
		case parts[0] == "good-scripts" && len(parts) == 1:
			serveGoodAssets(w, r, assetsH, models.ModuleScriptRepo, store.KeyGoodScript, "")
		case parts[0] == "good-scripts" && len(parts) == 2:
			serveGoodAssets(w, r, assetsH, models.ModuleScriptRepo, store.KeyGoodScript, parts[1])

		// Creative repository
		case parts[0] == "creatives" && len(parts) == 1 && r.Method == "GET":
			if allow(w, r, models.ModuleCreativeRepo, models.LevelView) {
				assetsH.ListCreatives(w, r)
			}
		case parts[0] == "creatives" && len(parts) == 1 && r.Method == "POST":
			if allow(w, r, models.ModuleCreativeRepo, models.LevelEdit) {
				assetsH.CreateCreative(w, r)
			}
		case parts[0] == "creatives" && len(parts) == 2 && r.Method == "PUT":
			if allow(w, r, models.ModuleCreativeRepo, models.LevelEdit) {
				assetsH.UpdateCreative(w, r, parts[1])
			}
		case parts[0] == "creatives" && len(parts) == 2 && r.Method == "DELETE":
			if allow(w, r, models.ModuleCreativeRepo, models.LevelEdit) {
				assetsH.DeleteCreative(w, r, parts[1])
			}

		// Ad campaigns
		case parts[0] == "campaigns" && len(parts) == 1 && r.Method == "GET":
			if allow(w, r, models.ModuleOralScript, models.LevelView) {
				assetsH.ListCampaigns(w, r)
			}
		case parts[0] == "campaigns" && len(parts) == 1 && r.Method == "POST":
			if allow(w, r, models.ModuleOralScript, models.LevelEdit) {
				assetsH.CreateCampaign(w, r)
			}
		case parts[0] == "campaigns" && len(parts) == 2 && r.Method == "PUT":
			if allow(w, r, models.ModuleOralScript, models.LevelEdit) {
				assetsH.UpdateCampaign(w, r, parts[1])
			}
		case parts[0] == "campaigns" && len(parts) == 2 && r.Method == "DELETE":
			if allow(w, r, models.ModuleOralScript, models.LevelEdit) {
				assetsH.DeleteCampaign(w, r, parts[1])
			}

		// Prompt templates
		case parts[0] == "prompts" && len(parts) == 1:
			servePrompts(w, r, assetsH, models.ModuleAssets, store.KeyPrompts, "")
		case parts[0] == "prompts" && len(parts) == 2:
			servePrompts(w, r, assetsH, models.ModuleAssets, store.KeyPrompts, parts[1])
		case parts[0] == "bv-prompts" && len(parts) == 1:
			servePrompts(w, r, assetsH, models.ModuleBVRepo, store.KeyBVPrompts, "")
		case parts[0] == "bv-prompts" && len(parts) == 2:
			servePrompts(w, r, assetsH, models.ModuleBVRepo, store.KeyBVPrompts, parts[1])

		// User directory (ADMIN only)
		case parts[0] == "users" && len(parts) == 1 && r.Method == "GET":
			if allowAdmin(w, r) {
				adminH.ListUsers(w, r)
			}
		case parts[0] == "users" && len(parts) == 2 && r.Method == "PUT":
			if allowAdmin(w, r) {
				adminH.UpdateUser(w, r, parts[1])
			}
		case parts[0] == "users" && len(parts) == 2 && r.Method == "DELETE":
			if allowAdmin(w, r) {
				adminH.DeleteUser(w, r, parts[1])
			}
		case parts[0] == "job-titles" && len(parts) == 1 && r.Method == "GET":
			if allowAdmin(w, r) {
				adminH.ListJobTitles(w, r)
			}
		case parts[0] == "job-titles" && len(parts) == 1 && r.Method == "PUT":
			if allowAdmin(w, r) {
				adminH.SetJobTitles(w, r)
			}
		case parts[0] == "audit" && len(parts) == 1 && r.Method == "GET":
			if allowAdmin(w, r) {
				adminH.ListAudit(w, r)
			}

		default:
			response.Err(w, "not found", 404)
		}
	})
}

// serveGoodAssets dispatches the method for a good-copy or good-script
// route after the module gate.
func serveGoodAssets(w http.ResponseWriter, r *http.Request, h *assets.Handler, module, kind, id string) {
	if !allow(w, r, module, level(r.Method)) {
		return
	}
	switch {
	case id == "" && r.Method == "GET":
		h.ListGoodAssets(w, r, kind)
	case id == "" && r.Method == "POST":
		h.CreateGoodAsset(w, r, kind)
	case id != "" && r.Method == "PUT":
		h.UpdateGoodAsset(w, r, kind, id)
	case id != "" && r.Method == "DELETE":
		h.DeleteGoodAsset(w, r, kind, id)
	default:
		response.Err(w, "not found", 404)
	}
}

// servePrompts dispatches the method for a prompt or BV-prompt route after
// the module gate.
func servePrompts(w http.ResponseWriter, r *http.Request, h *assets.Handler, module, kind, id string) {
	if !allow(w, r, module, level(r.Method)) {
		return
	}
	switch {
	case id == "" && r.Method == "GET":
		h.ListPrompts(w, r, kind)
	case id == "" && r.Method == "POST":
		h.CreatePrompt(w, r, kind)
	case id != "" && r.Method == "PUT":
		h.UpdatePrompt(w, r, kind, id)
	case id != "" && r.Method == "DELETE":
		h.DeletePrompt(w, r, kind, id)
	default:
		response.Err(w, "not found", 404)
	}
}
