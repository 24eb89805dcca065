// Package testutil provides shared helpers for package tests: an in-memory
// store stack and request/response plumbing.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"planpro/internal/audit"
	"planpro/internal/auth"
	"planpro/internal/kvstore"
	"planpro/internal/models"
	"planpro/internal/server"
	"planpro/internal/store"
)

// AdminPassword is the bootstrap admin password used by test stores.
const AdminPassword = "changeme"

// OpenKV opens an in-memory kvstore, closed when the test ends.
func OpenKV(t *testing.T) *kvstore.Store {
	t.Helper()
	kv, err := kvstore.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test kvstore: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// SetupStore opens a freshly-seeded store over an in-memory kvstore.
func SetupStore(t *testing.T) *store.Store {
	t.Helper()
	return SetupStoreKV(t, OpenKV(t))
}

// SetupStoreKV opens a store over the given kvstore, so tests can reopen
// against the same snapshots to exercise persistence.
func SetupStoreKV(t *testing.T, kv *kvstore.Store) *store.Store {
	t.Helper()
	st, err := store.Open(kv, AdminPassword)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	return st
}

// SetupApp wires a full application over an in-memory kvstore. The
// websocket hub is nil; broadcasts become no-ops.
func SetupApp(t *testing.T) *server.App {
	t.Helper()
	kv := OpenKV(t)
	st := SetupStoreKV(t, kv)
	return &server.App{
		Store:    st,
		Sessions: auth.NewManager(kv, kvstore.NewSessionCache(), st),
		Trail:    audit.NewTrail(kv, nil),
	}
}

// CreateTestUser inserts a directory entry with the given role, status,
// and permissions. The password is AdminPassword.
func CreateTestUser(t *testing.T, st *store.Store, email, role, status string, perms models.UserPermissions) *models.User {
	t.Helper()
	u, err := st.InsertUser(&models.User{
		Email:        email,
		Name:         email,
		Role:         role,
		Status:       status,
		Permissions:  perms,
		PasswordHash: HashPassword(t, AdminPassword),
	})
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	return u
}

// HashPassword hashes a password at minimum cost to keep tests fast.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

// JSONRequest builds a request with a JSON-encoded body.
func JSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AsUser attaches an identity to the request context the way the auth
// middleware does.
func AsUser(r *http.Request, u *models.User) *http.Request {
	return server.WithUser(r, u, "test-token")
}

// AssertStatus fails the test when the recorded status differs.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Fatalf("Expected status %d, got %d: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeEnvelope decodes the standard API envelope and extracts the data.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode API envelope: %v", err)
	}
	dataBytes, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(dataBytes, v); err != nil {
		t.Fatalf("Failed to decode data from envelope: %v", err)
	}
}
