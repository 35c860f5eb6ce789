package store

import "context"

// CreateUser inserts a credential record for username.
// The existence check and the insert run under one write-lock critical
// section: of two concurrent registrations for the same username, exactly
// one succeeds and the other observes ErrUserExists.
//
// passwordHash must already be the encoded slow hash; callers hash outside
// the lock.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.users[username]; taken {
		return ErrUserExists
	}
	s.users[username] = User{PasswordHash: passwordHash}
	return nil
}

// UserHash returns the stored password hash for username.
func (s *Store) UserHash(ctx context.Context, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.PasswordHash, nil
}
