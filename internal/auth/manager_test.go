package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"planpro/internal/kvstore"
	"planpro/internal/models"
	"planpro/internal/store"
)

func setup(t *testing.T) (*kvstore.Store, *store.Store, *Manager) {
	t.Helper()
	kv, err := kvstore.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open kvstore: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	st, err := store.Open(kv, "changeme")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return kv, st, NewManager(kv, kvstore.NewSessionCache(), st)
}

func addUser(t *testing.T, st *store.Store, email, status string) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	u, err := st.InsertUser(&models.User{
		Email:        email,
		Role:         models.RoleMember,
		Status:       status,
		Permissions:  models.MemberPermissions(),
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	return u
}

func TestLoginCredentialChecks(t *testing.T) {
	_, st, m := setup(t)
	addUser(t, st, "dana@example.com", models.StatusApproved)

	if _, _, err := m.Login("dana@example.com", "wrong", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := m.Login("nobody@example.com", "pw", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	u, token, err := m.Login("dana@example.com", "pw", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("Login must issue a token")
	}
	if got := m.Resolve(token); got == nil || got.ID != u.ID {
		t.Fatal("Issued token must resolve to the logged-in user")
	}
}

func TestLoginStatusGates(t *testing.T) {
	_, st, m := setup(t)
	addUser(t, st, "pending@example.com", models.StatusPending)
	addUser(t, st, "disabled@example.com", models.StatusDisabled)

	if _, _, err := m.Login("pending@example.com", "pw", false); !errors.Is(err, ErrAccountPending) {
		t.Fatalf("Expected ErrAccountPending, got %v", err)
	}
	if _, _, err := m.Login("disabled@example.com", "pw", false); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("Expected ErrAccountDisabled, got %v", err)
	}
}

func TestRememberSurvivesRestart(t *testing.T) {
	kv, st, m := setup(t)
	addUser(t, st, "dana@example.com", models.StatusApproved)

	if _, _, err := m.Login("dana@example.com", "pw", true); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A restart drops the session tier but keeps the durable slot.
	restarted := NewManager(kv, kvstore.NewSessionCache(), st)
	if got := restarted.Resolve(""); got == nil || got.Email != "dana@example.com" {
		t.Fatal("Remembered identity must survive a restart")
	}
}

func TestPlainLoginDoesNotSurviveRestart(t *testing.T) {
	kv, st, m := setup(t)
	addUser(t, st, "dana@example.com", models.StatusApproved)

	_, token, err := m.Login("dana@example.com", "pw", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	restarted := NewManager(kv, kvstore.NewSessionCache(), st)
	if restarted.Resolve(token) != nil {
		t.Fatal("Session-only identity must die with the process")
	}
	if restarted.Resolve("") != nil {
		t.Fatal("Plain login must not write the durable slot")
	}
}

func TestResolveReResolvesAgainstDirectory(t *testing.T) {
	_, st, m := setup(t)
	u := addUser(t, st, "dana@example.com", models.StatusApproved)

	_, token, err := m.Login("dana@example.com", "pw", true)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Permission edits made after login are visible immediately.
	st.Users.Update(u.ID, func(u *models.User) {
		u.Permissions.Products = models.LevelEdit
	})
	if got := m.Resolve(token); got.Permissions.Products != models.LevelEdit {
		t.Fatal("Resolve must re-read the live directory")
	}

	// Disabling the account kills the stored identity in both tiers.
	st.Users.Update(u.ID, func(u *models.User) {
		u.Status = models.StatusDisabled
	})
	if m.Resolve(token) != nil {
		t.Fatal("DISABLED identity must not resolve")
	}

	// Re-approving does not resurrect it: the slots were cleared.
	st.Users.Update(u.ID, func(u *models.User) {
		u.Status = models.StatusApproved
	})
	if m.Resolve(token) != nil {
		t.Fatal("Cleared identity slots must stay cleared")
	}
}

func TestResolveClearsCorruptDurableSlot(t *testing.T) {
	kv, _, m := setup(t)
	if err := kv.Save(KeyCurrentUser, []int{1, 2, 3}); err != nil {
		t.Fatalf("Failed to plant corrupt slot: %v", err)
	}
	if m.Resolve("") != nil {
		t.Fatal("Corrupt identity slot must resolve to logged out")
	}
	if _, ok, _ := kv.Load(KeyCurrentUser); ok {
		t.Fatal("Corrupt identity slot must be deleted")
	}
}

func TestLogoutClearsBothTiers(t *testing.T) {
	_, st, m := setup(t)
	addUser(t, st, "dana@example.com", models.StatusApproved)
	_, token, _ := m.Login("dana@example.com", "pw", true)

	m.Logout(token)
	if m.Resolve(token) != nil {
		t.Fatal("Token must not resolve after logout")
	}
	if m.Resolve("") != nil {
		t.Fatal("Durable slot must be cleared on logout")
	}
}

func TestRegister(t *testing.T) {
	_, st, m := setup(t)

	u, err := m.Register(st, "new@example.com", "New Member", "Copy Lead", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Role != models.RoleMember || u.Status != models.StatusPending {
		t.Fatalf("New accounts must be PENDING members: %+v", u)
	}
	if u.Permissions != models.MemberPermissions() {
		t.Fatalf("New accounts must get the member preset: %+v", u.Permissions)
	}

	if _, err := m.Register(st, "new@example.com", "Dup", "", "pw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Expected ErrEmailTaken, got %v", err)
	}

	// Registration does not authenticate: login stays gated on approval.
	if _, _, err := m.Login("new@example.com", "pw", false); !errors.Is(err, ErrAccountPending) {
		t.Fatalf("Expected ErrAccountPending, got %v", err)
	}
}
