package store

import (
	"context"

	"gate/cmd/security/secret"
)

// PutApp registers (or re-registers) an app under name with the given
// callback URL and a freshly generated shared secret. Re-registering an
// existing name overwrites the old record, secret included; the old secret
// stops working immediately.
func (s *Store) PutApp(ctx context.Context, name, url string) (App, error) {
	if err := ctx.Err(); err != nil {
		return App{}, err
	}

	sec, err := secret.New()
	if err != nil {
		return App{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	app := App{Secret: sec, URL: url}
	s.apps[name] = app
	return app, nil
}

// LookupApp returns the app registered under name.
func (s *Store) LookupApp(ctx context.Context, name string) (App, error) {
	if err := ctx.Err(); err != nil {
		return App{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[name]
	if !ok {
		return App{}, ErrAppNotFound
	}
	return app, nil
}
