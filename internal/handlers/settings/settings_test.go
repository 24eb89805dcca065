package settings

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"planpro/internal/models"
	"planpro/internal/schema"
	"planpro/internal/testutil"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	return &Handler{App: testutil.SetupApp(t)}
}

func TestCreateField(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.CreateField(w, testutil.JSONRequest("POST", "/api/v1/fields", map[string]interface{}{
		"name":  "shelf_life",
		"label": "Shelf life",
		"type":  "TEXT",
	}))
	testutil.AssertStatus(t, w, 200)

	var def schema.FieldDefinition
	testutil.DecodeEnvelope(t, w, &def)
	if def.ID == "" {
		t.Fatal("Server must assign the field id")
	}
	if len(h.Store.FieldDefs()) != 17 {
		t.Fatalf("Expected 17 fields, got %d", len(h.Store.FieldDefs()))
	}
}

func TestCreateFieldDuplicateNameConflicts(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.CreateField(w, testutil.JSONRequest("POST", "/api/v1/fields", map[string]interface{}{
		"name":  "sku",
		"label": "Another SKU",
		"type":  "TEXT",
	}))
	testutil.AssertStatus(t, w, 409)
	if len(h.Store.FieldDefs()) != 16 {
		t.Fatal("Rejected field must not enter the registry")
	}
}

func TestCreateFieldValidatesDefinition(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.CreateField(w, testutil.JSONRequest("POST", "/api/v1/fields", map[string]interface{}{
		"name":  "grade",
		"label": "Grade",
		"type":  "SELECT",
	}))
	testutil.AssertStatus(t, w, 400)
}

func TestUpdateField(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.UpdateField(w, testutil.JSONRequest("PUT", "/api/v1/fields/f_sku", map[string]interface{}{
		"name":     "sku",
		"label":    "Item SKU",
		"type":     "TEXT",
		"required": true,
	}), "f_sku")
	testutil.AssertStatus(t, w, 200)

	w = httptest.NewRecorder()
	h.UpdateField(w, testutil.JSONRequest("PUT", "/api/v1/fields/f_missing", map[string]interface{}{
		"name":  "x",
		"label": "X",
		"type":  "TEXT",
	}), "f_missing")
	testutil.AssertStatus(t, w, 404)

	// Renaming onto a live name is a conflict.
	w = httptest.NewRecorder()
	h.UpdateField(w, testutil.JSONRequest("PUT", "/api/v1/fields/f_sku", map[string]interface{}{
		"name":  "faq",
		"label": "SKU",
		"type":  "TEXT",
	}), "f_sku")
	testutil.AssertStatus(t, w, 409)
}

func TestDeleteFieldKeepsStoredValues(t *testing.T) {
	h := newHandler(t)
	p, err := h.Store.InsertProduct(&models.Product{
		Name:       "Serum",
		Attributes: map[string]json.RawMessage{"sku": json.RawMessage(`"SKU-1"`)},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	w := httptest.NewRecorder()
	h.DeleteField(w, testutil.JSONRequest("DELETE", "/api/v1/fields/f_sku", nil), "f_sku")
	testutil.AssertStatus(t, w, 200)

	got, _ := h.Store.Products.Get(p.ID)
	if string(got.Attributes["sku"]) != `"SKU-1"` {
		t.Fatal("Soft removal must keep stored attribute values")
	}

	w = httptest.NewRecorder()
	h.DeleteField(w, testutil.JSONRequest("DELETE", "/api/v1/fields/f_sku", nil), "f_sku")
	testutil.AssertStatus(t, w, 404)
}

func TestCategories(t *testing.T) {
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.ListCategories(w, testutil.JSONRequest("GET", "/api/v1/categories", nil))
	var categories []string
	testutil.DecodeEnvelope(t, w, &categories)
	if len(categories) != 5 {
		t.Fatalf("Expected 5 default categories, got %d", len(categories))
	}

	w = httptest.NewRecorder()
	h.SetCategories(w, testutil.JSONRequest("PUT", "/api/v1/categories", []string{"Pets", "Outdoors"}))
	testutil.AssertStatus(t, w, 200)
	if got := h.Store.Categories(); len(got) != 2 || got[0] != "Pets" {
		t.Fatalf("Categories not replaced: %v", got)
	}
}
