// Package session implements the in-memory Session Store: a
// capacity-bounded ring of prior picker contexts, retrievable by source
// name and recency index.
package session

import (
	"strings"

	"github.com/vim-fall/fall.vim/internal/core/container"
	"github.com/vim-fall/fall.vim/internal/core/item"
)

// DefaultCapacity is the Session Store's default capacity.
const DefaultCapacity = 100

// reservedNames are picker/action names excluded from persistence.
var reservedNames = map[string]struct{}{
	"@action":  {},
	"@session": {},
}

// IsReserved reports whether name is a reserved name that the store
// must reject at the save boundary: one of reservedNames, or any name
// starting with "@".
func IsReserved(name string) bool {
	_, ok := reservedNames[name]
	return ok || strings.HasPrefix(name, "@")
}

// Session is a saved {name, args, context} tuple enabling resume.
type Session struct {
	Name    string
	Args    []string
	Context item.Context
}

// Store is an in-memory history of sessions with push/evict-oldest
// behavior at capacity, backed by a Ring.
type Store struct {
	ring *container.Ring[Session]
}

// New constructs a Store. A non-positive capacity uses DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{ring: container.NewRing[Session](capacity)}
}

// ErrReservedName is returned by Save when session.Name is reserved.
type ErrReservedName struct{ Name string }

func (e ErrReservedName) Error() string {
	return "session: reserved name not saved: " + e.Name
}

// Save appends s, evicting the oldest session if over capacity. Saving
// a session whose name is reserved is rejected.
func (st *Store) Save(s Session) error {
	if IsReserved(s.Name) {
		return ErrReservedName{Name: s.Name}
	}
	st.ring.Push(s)
	return nil
}

// List returns sessions most-recent-first.
func (st *Store) List() []Session {
	oldestFirst := st.ring.Snapshot()
	out := make([]Session, len(oldestFirst))
	for i, s := range oldestFirst {
		out[len(oldestFirst)-1-i] = s
	}
	return out
}

// LoadQuery selects a session to load. Name filters by session name
// when non-empty; Number selects the 1-based recency index within the
// filtered (most-recent-first) list, defaulting to 1 (the most recent).
type LoadQuery struct {
	Name   string
	Number int
}

// Load filters the oldest-first history by q.Name when given, then
// returns the entry at index len(filtered)-(number), number defaulting
// to 1 (the most recent). Returns false when out of range or the
// filtered list is empty.
func (st *Store) Load(q LoadQuery) (Session, bool) {
	number := q.Number
	if number == 0 {
		number = 1
	}

	filtered := st.ring.Snapshot()
	if q.Name != "" {
		kept := filtered[:0:0]
		for _, s := range filtered {
			if s.Name == q.Name {
				kept = append(kept, s)
			}
		}
		filtered = kept
	}

	idx := len(filtered) - number
	if idx < 0 || idx >= len(filtered) {
		return Session{}, false
	}
	return filtered[idx], true
}

// Len returns the number of sessions currently stored.
func (st *Store) Len() int {
	return st.ring.Len()
}
