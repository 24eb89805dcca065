// Package store owns every entity collection and the field schema registry,
// backed by the kvstore persistence adapter. It is the only sanctioned way
// persisted state is touched; access checks happen in the callers before
// any mutation reaches this package.
package store

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"planpro/internal/kvstore"
	"planpro/internal/models"
	"planpro/internal/schema"
	"planpro/internal/validation"
)

// Durable snapshot keys, one per collection.
const (
	KeyProducts   = "products"
	KeyFields     = "fields"
	KeyCategories = "categories"
	KeyUsers      = "users"
	KeyJobTitles  = "job_titles"
	KeyGoodCopy   = "good_copy"
	KeyGoodScript = "good_scripts"
	KeyCreatives  = "creative_repo"
	KeyCampaigns  = "ad_campaigns"
	KeyPrompts    = "prompt_templates"
	KeyBVPrompts  = "bv_prompts"
)

// Bootstrap administrator identity. This user is created on first run and
// is never deleted or demoted by normal flows.
const (
	BootstrapAdminID    = "admin_id"
	BootstrapAdminEmail = "admin"
)

// DefaultCategories are the product categories installed on first run.
var DefaultCategories = []string{
	"Beauty & Skincare", "Health Supplements", "Household",
	"Consumer Electronics", "Mother & Baby",
}

// DefaultJobTitles are the team job titles installed on first run.
var DefaultJobTitles = []string{
	"Senior Planner", "Copy Lead", "Social Editor", "Visual Designer", "Ad Buyer",
}

// Store aggregates all collections behind a single lock so operations are
// processed strictly in issuance order and a later read always observes all
// earlier writes.
type Store struct {
	mu sync.Mutex
	kv *kvstore.Store

	fields *schema.Registry

	Products    *Collection[*models.Product]
	GoodCopy    *Collection[*models.GoodAsset]
	GoodScripts *Collection[*models.GoodAsset]
	Creatives   *Collection[*models.CreativeAsset]
	Campaigns   *Collection[*models.AdCampaign]
	Prompts     *Collection[*models.PromptTemplate]
	BVPrompts   *Collection[*models.PromptTemplate]
	Users       *Collection[*models.User]

	categories []string
	jobTitles  []string
}

// Open loads every collection from the kvstore, seeding defaults on first
// run. Seeding is persisted before anything reads from the store, so
// default-dependent subsystems never observe a partially-initialized state.
// adminPassword is hashed into the bootstrap admin when it is first created.
func Open(kv *kvstore.Store, adminPassword string) (*Store, error) {
	s := &Store{kv: kv}

	fields, err := loadStringValue(kv, KeyFields, schema.DefaultFields())
	if err != nil {
		return nil, err
	}
	s.fields = schema.NewRegistry(fields, func(fs []schema.FieldDefinition) error {
		return kv.Save(KeyFields, fs)
	})

	if s.categories, err = loadStringValue(kv, KeyCategories, DefaultCategories); err != nil {
		return nil, err
	}
	if s.jobTitles, err = loadStringValue(kv, KeyJobTitles, DefaultJobTitles); err != nil {
		return nil, err
	}

	if s.Products, err = newCollection[*models.Product](&s.mu, kv, KeyProducts, nil); err != nil {
		return nil, err
	}
	if s.GoodCopy, err = newCollection[*models.GoodAsset](&s.mu, kv, KeyGoodCopy, nil); err != nil {
		return nil, err
	}
	if s.GoodScripts, err = newCollection[*models.GoodAsset](&s.mu, kv, KeyGoodScript, nil); err != nil {
		return nil, err
	}
	if s.Creatives, err = newCollection[*models.CreativeAsset](&s.mu, kv, KeyCreatives, nil); err != nil {
		return nil, err
	}
	if s.Campaigns, err = newCollection[*models.AdCampaign](&s.mu, kv, KeyCampaigns, nil); err != nil {
		return nil, err
	}
	if s.Prompts, err = newCollection[*models.PromptTemplate](&s.mu, kv, KeyPrompts, nil); err != nil {
		return nil, err
	}
	if s.BVPrompts, err = newCollection[*models.PromptTemplate](&s.mu, kv, KeyBVPrompts, nil); err != nil {
		return nil, err
	}
	if s.Users, err = newCollection[*models.User](&s.mu, kv, KeyUsers, nil); err != nil {
		return nil, err
	}
	if err := s.ensureBootstrapAdmin(adminPassword); err != nil {
		return nil, err
	}
	return s, nil
}

// loadStringValue loads a non-entity snapshot (field list, string lists),
// installing and persisting the default on first run. A corrupt snapshot is
// logged and replaced by the default.
func loadStringValue[T any](kv *kvstore.Store, key string, def T) (T, error) {
	raw, ok, err := kv.Load(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, kv.Save(key, def)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("store: corrupt snapshot for %q, using defaults: %v", key, err)
		return def, nil
	}
	return v, nil
}

// ensureBootstrapAdmin guarantees exactly one bootstrap ADMIN exists,
// whatever state the users snapshot was loaded in.
func (s *Store) ensureBootstrapAdmin(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users.items {
		if u.ID == BootstrapAdminID || u.Email == BootstrapAdminEmail {
			return nil
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		ID:           BootstrapAdminID,
		Email:        BootstrapAdminEmail,
		Name:         "Administrator",
		Title:        "System Admin",
		Role:         models.RoleAdmin,
		Status:       models.StatusApproved,
		Permissions:  models.AdminPermissions(),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UnixMilli(),
	}
	s.Users.items = append([]*models.User{admin}, s.Users.items...)
	return s.Users.commit()
}

// FieldDefs returns the field registry entries in registry order.
func (s *Store) FieldDefs() []schema.FieldDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Fields()
}

// AddField registers a new field definition.
func (s *Store) AddField(def schema.FieldDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Add(def)
}

// UpdateField replaces the definition with the given id.
func (s *Store) UpdateField(id string, def schema.FieldDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Update(id, def)
}

// RemoveField deletes the definition with the given id. Attribute values
// stored under the removed name are retained on existing products.
func (s *Store) RemoveField(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Remove(id)
}

// ReplaceFields swaps the entire field list.
func (s *Store) ReplaceFields(fields []schema.FieldDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Replace(fields)
}

// InsertUser adds a directory entry.
func (s *Store) InsertUser(u *models.User) (*models.User, error) {
	return s.Users.Insert(u)
}

// Categories returns the product category list.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// SetCategories replaces the category list and commits it.
func (s *Store) SetCategories(categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]string(nil), categories...)
	return s.kv.Save(KeyCategories, s.categories)
}

// JobTitles returns the job title list.
func (s *Store) JobTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.jobTitles))
	copy(out, s.jobTitles)
	return out
}

// SetJobTitles replaces the job title list and commits it.
func (s *Store) SetJobTitles(titles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobTitles = append([]string(nil), titles...)
	return s.kv.Save(KeyJobTitles, s.jobTitles)
}

// InsertProduct validates the record against the field registry and, if
// every required field passes, inserts and commits it. All violations are
// returned together.
func (s *Store) InsertProduct(p *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Attributes == nil {
		p.Attributes = map[string]json.RawMessage{}
	}
	if ve := s.validateProduct(p.Name, p.Attributes); ve.HasErrors() {
		return nil, ve
	}
	return s.Products.insert(p)
}

// UpdateProduct validates the prospective state and applies it. A nil
// attributes map keeps the existing attributes.
func (s *Store) UpdateProduct(id string, name string, attrs map[string]json.RawMessage) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.Products.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if attrs == nil {
		attrs = existing.Attributes
	}
	if ve := s.validateProduct(name, attrs); ve.HasErrors() {
		return nil, ve
	}
	return s.Products.update(id, func(p *models.Product) {
		p.Name = name
		p.Attributes = attrs
	})
}

// RemoveProduct deletes a product. Asset records referencing the product
// keep their references; dangling product ids are tolerated.
func (s *Store) RemoveProduct(id string) error {
	return s.Products.Remove(id)
}

func (s *Store) validateProduct(name string, attrs map[string]json.RawMessage) *validation.ValidationErrors {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "name", name)
	ve.Merge(schema.Validate(s.fields.Fields(), attrs))
	return ve
}

// UserByID resolves a user from the live directory.
func (s *Store) UserByID(id string) (*models.User, bool) {
	return s.Users.Get(id)
}

// UserByEmail resolves a user by email address.
func (s *Store) UserByEmail(email string) (*models.User, bool) {
	for _, u := range s.Users.All() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return nil, false
}

// RemoveUser deletes a directory entry. The bootstrap administrator is
// never removed.
func (s *Store) RemoveUser(id string) error {
	if id == BootstrapAdminID {
		return nil
	}
	return s.Users.Remove(id)
}

// Counts returns per-collection record counts for the dashboard summary.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		KeyProducts:   s.Products.Len(),
		KeyGoodCopy:   s.GoodCopy.Len(),
		KeyGoodScript: s.GoodScripts.Len(),
		KeyCreatives:  s.Creatives.Len(),
		KeyCampaigns:  s.Campaigns.Len(),
		KeyPrompts:    s.Prompts.Len(),
		KeyBVPrompts:  s.BVPrompts.Len(),
		KeyUsers:      s.Users.Len(),
	}
}
