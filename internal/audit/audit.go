// Package audit keeps a capped trail of committed mutations, persisted as
// its own snapshot collection.
package audit

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"planpro/internal/kvstore"
	"planpro/internal/websocket"
)

// Action constants.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionExport = "EXPORT"
	ActionLogin  = "LOGIN"
	ActionLogout = "LOGOUT"
)

// KeyAuditLog is the durable snapshot key of the trail.
const KeyAuditLog = "audit_log"

// maxEntries caps the trail; oldest entries are dropped first.
const maxEntries = 500

// Entry is one audit record.
type Entry struct {
	ID         string `json:"id"`
	User       string `json:"user"`
	Action     string `json:"action"`
	Collection string `json:"collection"`
	RecordID   string `json:"recordId"`
	Summary    string `json:"summary,omitempty"`
	At         int64  `json:"at"`
}

// Trail records mutations and mirrors them to the websocket hub.
type Trail struct {
	mu      sync.Mutex
	kv      *kvstore.Store
	hub     *websocket.Hub
	entries []Entry
}

// NewTrail loads the persisted trail. A corrupt snapshot is logged and the
// trail restarts empty.
func NewTrail(kv *kvstore.Store, hub *websocket.Hub) *Trail {
	t := &Trail{kv: kv, hub: hub}
	raw, ok, err := kv.Load(KeyAuditLog)
	if err == nil && ok {
		if err := json.Unmarshal(raw, &t.entries); err != nil {
			log.Printf("audit: corrupt snapshot, restarting trail: %v", err)
			t.entries = nil
		}
	}
	return t
}

// Record appends an entry, persists the trail, and broadcasts the change.
// Auditing is best-effort: persistence errors are logged, never propagated.
func (t *Trail) Record(user, action, collection, recordID, summary string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.entries = append(t.entries, Entry{
		ID:         uuid.NewString(),
		User:       user,
		Action:     action,
		Collection: collection,
		RecordID:   recordID,
		Summary:    summary,
		At:         time.Now().UnixMilli(),
	})
	if len(t.entries) > maxEntries {
		t.entries = t.entries[len(t.entries)-maxEntries:]
	}
	if err := t.kv.Save(KeyAuditLog, t.entries); err != nil {
		log.Printf("audit: save error: %v", err)
	}
	t.mu.Unlock()

	t.hub.Broadcast(websocket.Event{Collection: collection, ID: recordID, Action: action})
}

// Entries returns the trail newest-first.
func (t *Trail) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[len(t.entries)-1-i] = e
	}
	return out
}
