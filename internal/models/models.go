package models

import "encoding/json"

// APIResponse is the standard JSON envelope for all API responses.
type APIResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total int `json:"total,omitempty"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// AccessLevel is a per-module permission level, ordered NONE < VIEW < EDIT.
type AccessLevel string

const (
	LevelNone AccessLevel = "NONE"
	LevelView AccessLevel = "VIEW"
	LevelEdit AccessLevel = "EDIT"
)

// Satisfies reports whether a granted level covers the desired level.
// VIEW is satisfied by VIEW or EDIT; EDIT only by EDIT.
func (l AccessLevel) Satisfies(desired AccessLevel) bool {
	switch desired {
	case LevelNone:
		return true
	case LevelView:
		return l == LevelView || l == LevelEdit
	case LevelEdit:
		return l == LevelEdit
	}
	return false
}

// Module keys governed by UserPermissions.
const (
	ModuleDashboard    = "dashboard"
	ModuleProducts     = "products"
	ModuleCreativeRepo = "creativeRepo"
	ModuleCopyRepo     = "copyRepo"
	ModuleScriptRepo   = "scriptRepo"
	ModuleOralScript   = "oralScript"
	ModuleAssets       = "assets"
	ModuleBVRepo       = "bvRepo"
	ModuleSettings     = "settings"
	ModuleAIStudio     = "aiStudio"
)

// AllModules lists every module key.
var AllModules = []string{
	ModuleDashboard, ModuleProducts, ModuleCreativeRepo, ModuleCopyRepo,
	ModuleScriptRepo, ModuleOralScript, ModuleAssets, ModuleBVRepo,
	ModuleSettings, ModuleAIStudio,
}

// UserPermissions maps every module key to an access level. The shape is
// fixed; unknown modules resolve to NONE.
type UserPermissions struct {
	Dashboard    AccessLevel `json:"dashboard"`
	Products     AccessLevel `json:"products"`
	CreativeRepo AccessLevel `json:"creativeRepo"`
	CopyRepo     AccessLevel `json:"copyRepo"`
	ScriptRepo   AccessLevel `json:"scriptRepo"`
	OralScript   AccessLevel `json:"oralScript"`
	Assets       AccessLevel `json:"assets"`
	BVRepo       AccessLevel `json:"bvRepo"`
	Settings     AccessLevel `json:"settings"`
	AIStudio     AccessLevel `json:"aiStudio"`
}

// Level returns the access level for a module key.
func (p UserPermissions) Level(module string) AccessLevel {
	switch module {
	case ModuleDashboard:
		return p.Dashboard
	case ModuleProducts:
		return p.Products
	case ModuleCreativeRepo:
		return p.CreativeRepo
	case ModuleCopyRepo:
		return p.CopyRepo
	case ModuleScriptRepo:
		return p.ScriptRepo
	case ModuleOralScript:
		return p.OralScript
	case ModuleAssets:
		return p.Assets
	case ModuleBVRepo:
		return p.BVRepo
	case ModuleSettings:
		return p.Settings
	case ModuleAIStudio:
		return p.AIStudio
	}
	return LevelNone
}

// AdminPermissions is the full-EDIT preset assigned to administrators.
func AdminPermissions() UserPermissions {
	return UserPermissions{
		Dashboard: LevelEdit, Products: LevelEdit,
		CreativeRepo: LevelEdit, CopyRepo: LevelEdit,
		ScriptRepo: LevelEdit, OralScript: LevelEdit,
		Assets: LevelEdit, BVRepo: LevelEdit,
		Settings: LevelEdit, AIStudio: LevelEdit,
	}
}

// MemberPermissions is the restricted preset assigned to newly registered
// members: VIEW on the shared repositories, NONE elsewhere.
func MemberPermissions() UserPermissions {
	return UserPermissions{
		Dashboard: LevelView, Products: LevelView,
		CreativeRepo: LevelView, CopyRepo: LevelView,
		ScriptRepo: LevelView, OralScript: LevelNone,
		Assets: LevelNone, BVRepo: LevelNone,
		Settings: LevelNone, AIStudio: LevelNone,
	}
}

// User roles.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// User account statuses.
const (
	StatusApproved = "APPROVED"
	StatusPending  = "PENDING"
	StatusDisabled = "DISABLED"
)

// User is a directory entry. Exactly one bootstrap ADMIN (see auth package)
// exists at all times.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Role         string          `json:"role"`
	Status       string          `json:"status"`
	Permissions  UserPermissions `json:"permissions"`
	PasswordHash string          `json:"passwordHash,omitempty"`
	CreatedAt    int64           `json:"createdAt"`
}

func (u *User) GetID() string          { return u.ID }
func (u *User) SetID(id string)        { u.ID = id }
func (u *User) SetCreatedAt(now int64) { u.CreatedAt = now }

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Sanitized returns a copy safe to send to clients.
func (u *User) Sanitized() User {
	c := *u
	c.PasswordHash = ""
	return c
}

// Product is an entity record validated against the field schema registry.
// Attributes is an open mapping from field name to a raw JSON value whose
// shape depends on the field's declared type; unknown keys are tolerated as
// legacy data.
type Product struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	CreatedAt  int64                      `json:"createdAt"`
	UpdatedAt  int64                      `json:"updatedAt"`
	Attributes map[string]json.RawMessage `json:"attributes"`
}

func (p *Product) GetID() string          { return p.ID }
func (p *Product) SetID(id string)        { p.ID = id }
func (p *Product) SetCreatedAt(now int64) { p.CreatedAt = now }
func (p *Product) SetUpdatedAt(now int64) { p.UpdatedAt = now }

// GoodAsset is a reference copy or script example linked to products.
// ProductIDs may dangle after a product is removed; dangling references are
// tolerated, never fatal.
type GoodAsset struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Content    string   `json:"content"`
	ProductIDs []string `json:"productIds"`
	CreatedAt  int64    `json:"createdAt"`
}

func (a *GoodAsset) GetID() string          { return a.ID }
func (a *GoodAsset) SetID(id string)        { a.ID = id }
func (a *GoodAsset) SetCreatedAt(now int64) { a.CreatedAt = now }

// Creative asset types.
const (
	CreativeImage      = "IMAGE"
	CreativeVideoTitle = "VIDEO_TITLE"
	CreativeLink       = "LINK"
)

// CreativeAsset is an image, video title, or link reference in the creative
// repository.
type CreativeAsset struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Value      string   `json:"value"`
	ProductIDs []string `json:"productIds"`
	CreatedAt  int64    `json:"createdAt"`
	Tags       []string `json:"tags,omitempty"`
}

func (a *CreativeAsset) GetID() string          { return a.ID }
func (a *CreativeAsset) SetID(id string)        { a.ID = id }
func (a *CreativeAsset) SetCreatedAt(now int64) { a.CreatedAt = now }

// PromptTemplate is a reusable prompt stored in the asset or BV repositories.
type PromptTemplate struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

func (t *PromptTemplate) GetID() string   { return t.ID }
func (t *PromptTemplate) SetID(id string) { t.ID = id }

// VisualSegment is one time-coded row of an ad campaign storyboard.
type VisualSegment struct {
	Time   string `json:"time"`
	Visual string `json:"visual"`
	Audio  string `json:"audio"`
}

// PlatformLink ties a published campaign to an external platform URL.
type PlatformLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// AdCampaign is a produced spoken-script campaign for one product.
type AdCampaign struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	Title          string          `json:"title"`
	ScriptContent  string          `json:"scriptContent"`
	VisualSegments []VisualSegment `json:"visualSegments"`
	PlatformLinks  []PlatformLink  `json:"platformLinks"`
	CreatedAt      int64           `json:"createdAt"`
}

func (c *AdCampaign) GetID() string          { return c.ID }
func (c *AdCampaign) SetID(id string)        { c.ID = id }
func (c *AdCampaign) SetCreatedAt(now int64) { c.CreatedAt = now }
