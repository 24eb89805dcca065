package store

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"planpro/internal/kvstore"
)

// ErrNotFound is returned when an operation targets a non-existent id.
var ErrNotFound = errors.New("not found")

// Entity is implemented by every record kept in a collection.
type Entity interface {
	GetID() string
	SetID(id string)
}

// created is implemented by records carrying a creation timestamp.
type created interface {
	SetCreatedAt(now int64)
}

// updated is implemented by records carrying a modification timestamp.
type updated interface {
	SetUpdatedAt(now int64)
}

// Collection is one in-memory record collection kept consistent with its
// persisted snapshot. Every successful mutation rewrites the entire
// snapshot; commits are suppressed until the initial load completes so that
// startup can never clobber stored data with empty defaults.
type Collection[T Entity] struct {
	mu     *sync.Mutex
	key    string
	kv     *kvstore.Store
	items  []T
	loaded bool
}

// newCollection loads the snapshot stored under key. A missing snapshot
// yields the seed records (persisted immediately); a corrupt snapshot is
// logged, dropped, and replaced by an empty collection on the next commit.
func newCollection[T Entity](mu *sync.Mutex, kv *kvstore.Store, key string, seed []T) (*Collection[T], error) {
	c := &Collection[T]{mu: mu, key: key, kv: kv}
	raw, ok, err := kv.Load(key)
	if err != nil {
		return nil, err
	}
	switch {
	case !ok:
		c.items = seed
		c.loaded = true
		if err := c.commit(); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(raw, &c.items); err != nil {
			log.Printf("store: corrupt snapshot for %q, resetting: %v", key, err)
			c.items = nil
		}
		c.loaded = true
	}
	return c, nil
}

func (c *Collection[T]) commit() error {
	if !c.loaded {
		return nil
	}
	items := c.items
	if items == nil {
		items = []T{}
	}
	return c.kv.Save(c.key, items)
}

// Key returns the durable snapshot key of this collection.
func (c *Collection[T]) Key() string { return c.key }

// clone detaches a record from its stored counterpart so callers can read it
// after the lock is released. Records always round-trip through JSON (the
// snapshot depends on it), so a failure here means the collection could not
// have been committed either.
func clone[T Entity](rec T) T {
	raw, err := json.Marshal(rec)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

// All returns detached copies of the records in collection order.
func (c *Collection[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	for i, it := range c.items {
		out[i] = clone(it)
	}
	return out
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get returns a detached copy of the record with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.get(id)
	if !ok {
		return rec, false
	}
	return clone(rec), true
}

func (c *Collection[T]) get(id string) (T, bool) {
	for _, it := range c.items {
		if it.GetID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Insert assigns a fresh unique id and creation timestamp, prepends the
// record, and commits the snapshot.
func (c *Collection[T]) Insert(rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insert(rec)
}

func (c *Collection[T]) insert(rec T) (T, error) {
	rec.SetID(uuid.NewString())
	now := time.Now().UnixMilli()
	if t, ok := any(rec).(created); ok {
		t.SetCreatedAt(now)
	}
	if t, ok := any(rec).(updated); ok {
		t.SetUpdatedAt(now)
	}
	c.items = append([]T{clone(rec)}, c.items...)
	if err := c.commit(); err != nil {
		c.items = c.items[1:]
		return rec, err
	}
	return rec, nil
}

// Update applies the mutation to a copy of the record with the given id,
// recomputes its modification timestamp, and commits; the copy replaces the
// stored record only once the commit succeeds, so concurrent readers never
// observe a half-applied mutation and a failed commit leaves the collection
// untouched. Returns ErrNotFound if absent.
func (c *Collection[T]) Update(id string, apply func(T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update(id, apply)
}

func (c *Collection[T]) update(id string, apply func(T)) (T, error) {
	idx := -1
	for i, it := range c.items {
		if it.GetID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		var zero T
		return zero, ErrNotFound
	}
	rec := clone(c.items[idx])
	apply(rec)
	rec.SetID(id) // id is immutable across updates
	if t, ok := any(rec).(updated); ok {
		t.SetUpdatedAt(time.Now().UnixMilli())
	}
	prev := c.items[idx]
	c.items[idx] = rec
	if err := c.commit(); err != nil {
		c.items[idx] = prev
		var zero T
		return zero, err
	}
	return rec, nil
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op, not an error.
func (c *Collection[T]) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(id)
}

func (c *Collection[T]) remove(id string) error {
	for i, it := range c.items {
		if it.GetID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return c.commit()
		}
	}
	return nil
}
