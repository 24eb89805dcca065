package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"planpro/internal/models"
	"planpro/internal/server"
	"planpro/internal/store"
	"planpro/internal/testutil"
)

func setupMux(t *testing.T) (*http.ServeMux, *server.App) {
	t.Helper()
	app := testutil.SetupApp(t)
	mux := http.NewServeMux()
	registerRoutes(mux, app)
	return mux, app
}

func serveAs(mux *http.ServeMux, u *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := testutil.JSONRequest(method, path, body)
	if u != nil {
		req = testutil.AsUser(req, u)
	}
	mux.ServeHTTP(w, req)
	return w
}

func TestViewLevelStopsAtReads(t *testing.T) {
	mux, app := setupMux(t)
	member := testutil.CreateTestUser(t, app.Store, "viewer@example.com",
		models.RoleMember, models.StatusApproved, models.MemberPermissions())

	w := serveAs(mux, member, "GET", "/api/v1/products", nil)
	testutil.AssertStatus(t, w, 200)

	w = serveAs(mux, member, "POST", "/api/v1/products", map[string]interface{}{
		"name":       "Serum",
		"attributes": map[string]interface{}{"sku": "SKU-1"},
	})
	testutil.AssertStatus(t, w, 403)
	if app.Store.Products.Len() != 0 {
		t.Fatal("A denied mutation must not reach the store")
	}
}

func TestNoneLevelHidesModule(t *testing.T) {
	mux, app := setupMux(t)
	member := testutil.CreateTestUser(t, app.Store, "viewer@example.com",
		models.RoleMember, models.StatusApproved, models.MemberPermissions())

	// The member preset grants NONE on settings.
	w := serveAs(mux, member, "GET", "/api/v1/fields", nil)
	testutil.AssertStatus(t, w, 403)
	w = serveAs(mux, member, "GET", "/api/v1/categories", nil)
	testutil.AssertStatus(t, w, 403)
}

func TestEditLevelCoversReads(t *testing.T) {
	mux, app := setupMux(t)
	perms := models.MemberPermissions()
	perms.Products = models.LevelEdit
	editor := testutil.CreateTestUser(t, app.Store, "editor@example.com",
		models.RoleMember, models.StatusApproved, perms)

	w := serveAs(mux, editor, "POST", "/api/v1/products", map[string]interface{}{
		"name":       "Serum",
		"attributes": map[string]interface{}{"sku": "SKU-1"},
	})
	testutil.AssertStatus(t, w, 200)

	w = serveAs(mux, editor, "GET", "/api/v1/products", nil)
	testutil.AssertStatus(t, w, 200)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	mux, app := setupMux(t)
	// Full EDIT map, but still a MEMBER: user management stays closed.
	member := testutil.CreateTestUser(t, app.Store, "poweruser@example.com",
		models.RoleMember, models.StatusApproved, models.AdminPermissions())
	admin, _ := app.Store.UserByID(store.BootstrapAdminID)

	for _, path := range []string{"/api/v1/users", "/api/v1/job-titles", "/api/v1/audit"} {
		w := serveAs(mux, member, "GET", path, nil)
		testutil.AssertStatus(t, w, 403)
		w = serveAs(mux, admin, "GET", path, nil)
		testutil.AssertStatus(t, w, 200)
	}
}

func TestPendingUserDeniedEverywhere(t *testing.T) {
	mux, app := setupMux(t)
	pending := testutil.CreateTestUser(t, app.Store, "pending@example.com",
		models.RoleAdmin, models.StatusPending, models.AdminPermissions())

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/products", "/api/v1/users"} {
		w := serveAs(mux, pending, "GET", path, nil)
		testutil.AssertStatus(t, w, 403)
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	mux, app := setupMux(t)
	handler := requireAuth(app, mux)

	// No token: API routes are closed, auth routes stay open.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, testutil.JSONRequest("GET", "/api/v1/products", nil))
	testutil.AssertStatus(t, w, 401)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, testutil.JSONRequest("GET", "/api/v1/auth/me", nil))
	testutil.AssertStatus(t, w, 200)

	// A login token carried as a bearer header is accepted.
	_, token, err := app.Sessions.Login(store.BootstrapAdminEmail, testutil.AdminPassword, false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	req := testutil.JSONRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 200)
}

func TestUnknownRoute(t *testing.T) {
	mux, app := setupMux(t)
	admin, _ := app.Store.UserByID(store.BootstrapAdminID)
	w := serveAs(mux, admin, "GET", "/api/v1/nonsense", nil)
	testutil.AssertStatus(t, w, 404)
}
