package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// CreateSession mints a new session for username and returns its id and
// record. The id is a UUIDv4 (122 bits from a cryptographically secure
// source); uniqueness against live sessions is guaranteed under the write
// lock by re-rolling on the vanishingly unlikely collision.
//
// Expiry is fixed at now + SessionTTL. The owning user must exist at
// creation time; later account deletion can orphan the record (not cleaned
// up, see package doc).
func (s *Store) CreateSession(ctx context.Context, now time.Time, username, ip, appName string) (uuid.UUID, Session, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return uuid.Nil, Session{}, ErrUserNotFound
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, Session{}, err
	}
	for {
		if _, clash := s.sessions[id]; !clash {
			break
		}
		if id, err = uuid.NewRandom(); err != nil {
			return uuid.Nil, Session{}, err
		}
	}

	sess := Session{
		Username: username,
		Expires:  now.Add(SessionTTL),
		IP:       ip,
		App:      appName,
	}
	s.sessions[id] = sess
	return id, sess, nil
}

// Session returns the session record for id.
// It does not consult the expiry field; expired records remain retrievable
// until explicitly removed.
func (s *Store) Session(ctx context.Context, id uuid.UUID) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// RemoveSession deletes the session for id, if present.
func (s *Store) RemoveSession(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// SessionsOf returns a snapshot of all sessions owned by username, ordered
// by id for deterministic listings.
func (s *Store) SessionsOf(ctx context.Context, username string) ([]OwnedSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]OwnedSession, 0, 4)
	for id, sess := range s.sessions {
		if sess.Username == username {
			out = append(out, OwnedSession{ID: id, Session: sess})
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// DeleteAccount removes the account owning sessionID along with that one
// session, in a single critical section. Other live sessions of the same
// account are left untouched (no cascading revoke).
func (s *Store) DeleteAccount(ctx context.Context, sessionID uuid.UUID) (username string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	delete(s.users, sess.Username)
	delete(s.sessions, sessionID)
	return sess.Username, nil
}

// RevokeOwned removes targetID iff both the caller's session and the target
// session exist and belong to the same user. The ownership check and the
// removal share one critical section. The boolean reports whether a removal
// happened; callers surface no success/failure signal to the requester.
func (s *Store) RevokeOwned(ctx context.Context, callerID, targetID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	caller, ok := s.sessions[callerID]
	if !ok {
		return false, nil
	}
	target, ok := s.sessions[targetID]
	if !ok {
		return false, nil
	}
	if target.Username != caller.Username {
		return false, nil
	}
	delete(s.sessions, targetID)
	return true, nil
}

// Resolve looks up the session for id and confirms its owning user still
// exists, under one read-lock section. It is the guard path for endpoints
// needing "current caller" identity and deliberately performs no expiry
// check (only the validation flow consults expiry).
func (s *Store) Resolve(ctx context.Context, id uuid.UUID) (Session, User, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, User{}, ErrSessionNotFound
	}
	u, ok := s.users[sess.Username]
	if !ok {
		return Session{}, User{}, ErrUserNotFound
	}
	return sess, u, nil
}
