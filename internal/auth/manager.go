package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"planpro/internal/kvstore"
	"planpro/internal/models"
)

// Identity lifecycle errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountPending     = errors.New("account pending approval")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailTaken         = errors.New("email already registered")
)

// KeyCurrentUser is the identity-reference slot, present in both the
// session tier and (for "remember me") the durable tier.
const KeyCurrentUser = "current_user"

// Directory resolves users against the live user collection, so role and
// status edits made since the last login take effect immediately.
type Directory interface {
	UserByID(id string) (*models.User, bool)
	UserByEmail(email string) (*models.User, bool)
}

// Registrar creates directory entries for self-registration.
type Registrar interface {
	InsertUser(u *models.User) (*models.User, error)
}

// identityRef is what both identity slots store: a reference, never a
// cached user copy.
type identityRef struct {
	UserID string `json:"userId"`
	Token  string `json:"token,omitempty"`
}

// Manager drives the Unauthenticated/Authenticated state machine. The
// session tier (in-process) is checked first on restore, the durable tier
// second, so "remember me" survives a restart and a plain login does not.
type Manager struct {
	kv       *kvstore.Store
	sessions *kvstore.SessionCache
	users    Directory
}

// NewManager wires the two identity tiers to the live user directory.
func NewManager(kv *kvstore.Store, sessions *kvstore.SessionCache, users Directory) *Manager {
	return &Manager{kv: kv, sessions: sessions, users: users}
}

// Login authenticates credentials against the directory. On success the
// identity reference is written to the session tier always and to the
// durable tier only when remember is set. The returned token identifies
// this session-tier entry.
func (m *Manager) Login(email, password string, remember bool) (*models.User, string, error) {
	user, ok := m.users.UserByEmail(strings.TrimSpace(email))
	if !ok {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	switch user.Status {
	case models.StatusApproved:
	case models.StatusPending:
		return nil, "", ErrAccountPending
	default:
		return nil, "", ErrAccountDisabled
	}

	token := newToken()
	if err := m.sessions.SaveSession(sessionKey(token), identityRef{UserID: user.ID}); err != nil {
		return nil, "", err
	}
	if remember {
		if err := m.kv.Save(KeyCurrentUser, identityRef{UserID: user.ID}); err != nil {
			return nil, "", err
		}
	}
	return user, token, nil
}

// Resolve maps a session token back to the current user, re-resolving
// against the live directory. The session tier is consulted first, the
// durable "remember me" slot second. An identity whose user is no longer
// APPROVED is cleared from both tiers and resolves to nil.
func (m *Manager) Resolve(token string) *models.User {
	var ref identityRef
	found := false
	if token != "" {
		if raw, ok := m.sessions.LoadSession(sessionKey(token)); ok {
			if json.Unmarshal(raw, &ref) == nil {
				found = true
			}
		}
	}
	if !found {
		raw, ok, err := m.kv.Load(KeyCurrentUser)
		if err != nil || !ok {
			return nil
		}
		if err := json.Unmarshal(raw, &ref); err != nil {
			// Corrupt identity slot: treat as logged out and clear it.
			m.kv.Delete(KeyCurrentUser)
			return nil
		}
	}

	user, ok := m.users.UserByID(ref.UserID)
	if !ok || user.Status != models.StatusApproved {
		m.clear(token)
		return nil
	}
	return user
}

// Logout clears both identity slots unconditionally.
func (m *Manager) Logout(token string) {
	m.clear(token)
}

func (m *Manager) clear(token string) {
	if token != "" {
		m.sessions.ClearSession(sessionKey(token))
	}
	m.kv.Delete(KeyCurrentUser)
}

// Register creates a new MEMBER in status PENDING with the restricted
// member preset. It does not authenticate the caller.
func (m *Manager) Register(reg Registrar, email, name, title, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if _, exists := m.users.UserByEmail(email); exists {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return reg.InsertUser(&models.User{
		Email:        email,
		Name:         name,
		Title:        title,
		Role:         models.RoleMember,
		Status:       models.StatusPending,
		Permissions:  models.MemberPermissions(),
		PasswordHash: string(hash),
	})
}

func sessionKey(token string) string {
	return KeyCurrentUser + ":" + token
}

func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// a token minted from a failed entropy read must never reach a client
		panic(err)
	}
	return hex.EncodeToString(b)
}
