// Package schema defines the mutable field schema that governs validation
// and rendering of product records.
package schema

import (
	"errors"
	"fmt"
)

// FieldType tags the value shape of a field definition.
type FieldType string

const (
	TypeText           FieldType = "TEXT"
	TypeNumber         FieldType = "NUMBER"
	TypeDate           FieldType = "DATE"
	TypeLongText       FieldType = "LONGTEXT"
	TypeSelect         FieldType = "SELECT"
	TypeList           FieldType = "LIST"
	TypeFAQ            FieldType = "FAQ"
	TypeRecommendation FieldType = "RECOMMENDATION"
	TypeImage          FieldType = "IMAGE"
)

// ValidFieldTypes lists every recognized field type.
var ValidFieldTypes = []FieldType{
	TypeText, TypeNumber, TypeDate, TypeLongText, TypeSelect,
	TypeList, TypeFAQ, TypeRecommendation, TypeImage,
}

// FieldDefinition is one attribute schema entry. Name is the attribute key
// used inside product records and must be unique within the registry.
// Options is only meaningful for SELECT fields.
type FieldDefinition struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
}

// FAQEntry is one question/answer pair in a FAQ field value.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Recommendation is one entry of a RECOMMENDATION field value.
type Recommendation struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

var (
	// ErrDuplicateFieldName is returned when adding a field whose name is
	// already registered.
	ErrDuplicateFieldName = errors.New("field name already registered")
	// ErrFieldNotFound is returned when updating or removing an unknown id.
	ErrFieldNotFound = errors.New("field not found")
)

// Registry holds the ordered field definitions. It is not safe for
// concurrent use; callers serialize access through the owning store.
type Registry struct {
	fields []FieldDefinition
	commit func([]FieldDefinition) error
}

// NewRegistry creates a registry over the given definitions. commit is
// invoked with the full field list after every successful mutation; a nil
// commit disables persistence (used by tests).
func NewRegistry(fields []FieldDefinition, commit func([]FieldDefinition) error) *Registry {
	return &Registry{fields: fields, commit: commit}
}

// Fields returns the definitions in registry order.
func (r *Registry) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(r.fields))
	copy(out, r.fields)
	return out
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (FieldDefinition, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Add registers a new field definition at the end of the registry.
func (r *Registry) Add(def FieldDefinition) error {
	for _, f := range r.fields {
		if f.Name == def.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateFieldName, def.Name)
		}
	}
	r.fields = append(r.fields, def)
	return r.persist()
}

// Update replaces the definition with the given id. The id itself is
// immutable; renaming to an already-registered name is rejected.
func (r *Registry) Update(id string, def FieldDefinition) error {
	idx := -1
	for i, f := range r.fields {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	for i, f := range r.fields {
		if i != idx && f.Name == def.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateFieldName, def.Name)
		}
	}
	def.ID = id
	r.fields[idx] = def
	return r.persist()
}

// Remove deletes the definition with the given id. Removal is soft with
// respect to entity data: attribute values stored under the removed name are
// retained and merely become unrecognized for future validation.
func (r *Registry) Remove(id string) error {
	for i, f := range r.fields {
		if f.ID == id {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			return r.persist()
		}
	}
	return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
}

// Replace swaps the entire field list (used by the settings editor when
// reordering).
func (r *Registry) Replace(fields []FieldDefinition) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateFieldName, f.Name)
		}
		seen[f.Name] = true
	}
	r.fields = append([]FieldDefinition(nil), fields...)
	return r.persist()
}

func (r *Registry) persist() error {
	if r.commit == nil {
		return nil
	}
	return r.commit(r.Fields())
}

// DefaultFields is the documented 16-field default schema installed on
// first run.
func DefaultFields() []FieldDefinition {
	return []FieldDefinition{
		{ID: "f_sku", Name: "sku", Label: "SKU", Type: TypeText, Required: true},
		{ID: "f_retailer_sku", Name: "retailer_sku", Label: "Retailer SKU", Type: TypeText},
		{ID: "f_prod_img", Name: "product_image", Label: "Product image", Type: TypeImage},
		{ID: "f_web_img", Name: "web_image", Label: "Web image", Type: TypeImage},
		{ID: "f_usage", Name: "usage_instructions", Label: "Usage instructions", Type: TypeLongText},
		{ID: "f_ingredients", Name: "ingredients", Label: "Full ingredient list", Type: TypeLongText},
		{ID: "f_usp", Name: "usp", Label: "Selling points", Type: TypeList},
		{ID: "f_pain_points", Name: "pain_points", Label: "Customer pain points", Type: TypeList},
		{ID: "f_recommend", Name: "related_products", Label: "Recommended pairings (name/link/reason)", Type: TypeRecommendation},
		{ID: "f_target_audiences", Name: "target_audiences", Label: "Target audiences", Type: TypeList},
		{ID: "f_faq", Name: "faq", Label: "Frequently asked questions", Type: TypeFAQ},
		{ID: "f_value_prop", Name: "value_prop", Label: "Value-for-money angles", Type: TypeList},
		{ID: "f_testimonials", Name: "testimonials", Label: "Testimonials", Type: TypeList},
		{ID: "f_official_url", Name: "official_url", Label: "Official store URL", Type: TypeText},
		{ID: "f_store_url", Name: "store_url", Label: "Marketplace URL", Type: TypeText},
		{ID: "f_retail_url", Name: "retail_url", Label: "Retail chain URL", Type: TypeText},
	}
}
