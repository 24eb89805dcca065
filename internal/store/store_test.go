package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"planpro/internal/models"
	"planpro/internal/validation"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	kv := openKV(t)
	st, err := Open(kv, "changeme")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return st
}

func TestFirstRunSeeding(t *testing.T) {
	st := openStore(t)

	if got := len(st.FieldDefs()); got != 16 {
		t.Fatalf("Expected 16 default fields, got %d", got)
	}
	if got := len(st.Categories()); got != 5 {
		t.Fatalf("Expected 5 default categories, got %d", got)
	}
	if got := len(st.JobTitles()); got != 5 {
		t.Fatalf("Expected 5 default job titles, got %d", got)
	}

	users := st.Users.All()
	if len(users) != 1 {
		t.Fatalf("Expected exactly the bootstrap admin, got %d users", len(users))
	}
	admin := users[0]
	if admin.ID != BootstrapAdminID || admin.Email != BootstrapAdminEmail {
		t.Fatalf("Unexpected bootstrap identity: %+v", admin)
	}
	if admin.Role != models.RoleAdmin || admin.Status != models.StatusApproved {
		t.Fatalf("Bootstrap admin must be an APPROVED ADMIN: %+v", admin)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("changeme")) != nil {
		t.Fatal("Bootstrap admin password hash does not match the configured password")
	}
	for _, m := range models.AllModules {
		if admin.Permissions.Level(m) != models.LevelEdit {
			t.Fatalf("Bootstrap admin must hold EDIT on %s", m)
		}
	}

	if st.Products.Len() != 0 {
		t.Fatal("First run must not seed products")
	}
}

func TestSeedingPersistsAcrossReopen(t *testing.T) {
	kv := openKV(t)
	if _, err := Open(kv, "changeme"); err != nil {
		t.Fatalf("First open failed: %v", err)
	}
	st, err := Open(kv, "different-now")
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}

	users := st.Users.All()
	if len(users) != 1 {
		t.Fatalf("Reopen must not duplicate the bootstrap admin, got %d users", len(users))
	}
	// The original password survives: the admin already existed.
	if bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("changeme")) != nil {
		t.Fatal("Reopen must not rewrite the bootstrap password")
	}
}

func TestInsertProductValidates(t *testing.T) {
	st := openStore(t)

	_, err := st.InsertProduct(&models.Product{Name: "No SKU"})
	var ve *validation.ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("Expected validation errors, got %v", err)
	}
	if st.Products.Len() != 0 {
		t.Fatal("A rejected insert must not be persisted")
	}

	p, err := st.InsertProduct(&models.Product{
		Name:       "Serum",
		Attributes: map[string]json.RawMessage{"sku": json.RawMessage(`"SKU-1"`)},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if p.ID == "" {
		t.Fatal("Insert must assign an id")
	}
}

func TestRejectedUpdateLeavesSnapshotIntact(t *testing.T) {
	kv := openKV(t)
	st, _ := Open(kv, "changeme")
	p, err := st.InsertProduct(&models.Product{
		Name:       "Serum",
		Attributes: map[string]json.RawMessage{"sku": json.RawMessage(`"SKU-1"`)},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Clearing the required sku is rejected in full.
	_, err = st.UpdateProduct(p.ID, "Serum", map[string]json.RawMessage{})
	var ve *validation.ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("Expected validation errors, got %v", err)
	}

	// Nothing reached the durable tier: a fresh store sees the old state.
	st2, err := Open(kv, "changeme")
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	got, ok := st2.Products.Get(p.ID)
	if !ok {
		t.Fatal("Record lost")
	}
	if string(got.Attributes["sku"]) != `"SKU-1"` {
		t.Fatalf("Rejected update leaked into the snapshot: %s", got.Attributes["sku"])
	}
}

func TestUpdateProductKeepsAttributesWhenNil(t *testing.T) {
	st := openStore(t)
	p, _ := st.InsertProduct(&models.Product{
		Name:       "Serum",
		Attributes: map[string]json.RawMessage{"sku": json.RawMessage(`"SKU-1"`)},
	})

	got, err := st.UpdateProduct(p.ID, "Night Serum", nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != "Night Serum" {
		t.Fatalf("Name not updated: %+v", got)
	}
	if string(got.Attributes["sku"]) != `"SKU-1"` {
		t.Fatal("Nil attributes must keep the existing attributes")
	}

	if _, err := st.UpdateProduct("missing", "X", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestRemovedFieldStopsValidating(t *testing.T) {
	st := openStore(t)
	p, _ := st.InsertProduct(&models.Product{
		Name:       "Serum",
		Attributes: map[string]json.RawMessage{"sku": json.RawMessage(`"SKU-1"`)},
	})

	if err := st.RemoveField("f_sku"); err != nil {
		t.Fatalf("RemoveField failed: %v", err)
	}

	// The stored value survives the definition.
	got, _ := st.Products.Get(p.ID)
	if string(got.Attributes["sku"]) != `"SKU-1"` {
		t.Fatal("Field removal must not touch stored attribute values")
	}

	// New records no longer need the removed field.
	if _, err := st.InsertProduct(&models.Product{Name: "Toner"}); err != nil {
		t.Fatalf("Insert after field removal failed: %v", err)
	}
}

func TestRemoveUserProtectsBootstrapAdmin(t *testing.T) {
	st := openStore(t)
	if err := st.RemoveUser(BootstrapAdminID); err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}
	if _, ok := st.UserByID(BootstrapAdminID); !ok {
		t.Fatal("Bootstrap admin must never be removed")
	}
}

func TestUserByEmailIsCaseInsensitive(t *testing.T) {
	st := openStore(t)
	if _, err := st.InsertUser(&models.User{Email: "Dana@Example.com", Status: models.StatusPending}); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if _, ok := st.UserByEmail("dana@example.com"); !ok {
		t.Fatal("Email lookup must be case-insensitive")
	}
}

func TestCounts(t *testing.T) {
	st := openStore(t)
	st.InsertProduct(&models.Product{
		Name:       "Serum",
		Attributes: map[string]json.RawMessage{"sku": json.RawMessage(`"SKU-1"`)},
	})
	st.GoodCopy.Insert(&models.GoodAsset{Title: "Hook"})

	counts := st.Counts()
	if counts[KeyProducts] != 1 || counts[KeyGoodCopy] != 1 || counts[KeyUsers] != 1 {
		t.Fatalf("Unexpected counts: %v", counts)
	}
}

func TestStoreConcurrentReadsAndUpdates(t *testing.T) {
	st := openStore(t)
	p, err := st.InsertProduct(&models.Product{
		Name:       "Serum",
		Attributes: map[string]json.RawMessage{"sku": json.RawMessage(`"SKU-1"`)},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if _, err := json.Marshal(st.Products.All()); err != nil {
				t.Errorf("Marshal of listed products failed: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if _, err := st.UpdateProduct(p.ID, fmt.Sprintf("Serum v%d", i), nil); err != nil {
				t.Errorf("UpdateProduct failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	got, ok := st.Products.Get(p.ID)
	if !ok || got.Name != "Serum v99" {
		t.Fatalf("Lost update, got %+v", got)
	}
}
