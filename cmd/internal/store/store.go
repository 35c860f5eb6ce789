package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is the fixed lifetime of every session: expiry = creation + 7 days.
const SessionTTL = 7 * 24 * time.Hour

// User is a registered account. The password is never stored in clear;
// PasswordHash is an opaque encoded Argon2id hash.
type User struct {
	PasswordHash string
}

// Session is a live authenticated period.
//
// Username is a weak reference: deleting the account does not clean up the
// account's other sessions, so holders must re-resolve it through the
// credential map. App is likewise a weak reference into the app registry.
type Session struct {
	Username string
	Expires  time.Time
	IP       string
	App      string
}

// App is a registered third-party consumer of the broker.
type App struct {
	Secret string
	URL    string
}

// OwnedSession pairs a session record with its id for listings.
type OwnedSession struct {
	ID uuid.UUID
	Session
}

// Store is the single shared state instance. One Store is constructed at
// startup, passed by reference into every handler, and dropped at shutdown;
// there is no package-level mutable state.
type Store struct {
	mu       sync.RWMutex
	users    map[string]User
	sessions map[uuid.UUID]Session
	apps     map[string]App
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]User),
		sessions: make(map[uuid.UUID]Session),
		apps:     make(map[string]App),
	}
}

// Counts returns the current map sizes (users, sessions, apps).
// Session records are never swept on expiry, so the session count is also
// the resident-memory signal for the standing growth hazard.
func (s *Store) Counts() (users, sessions, apps int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), len(s.sessions), len(s.apps)
}
