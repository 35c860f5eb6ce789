package broker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gate/cmd/internal/store"
	"gate/cmd/security/password"
	"gate/cmd/security/secret"
)

// Service implements the broker flows against the shared store.
//
// Methods report outcomes as sentinel errors (store.ErrUserExists,
// store.ErrUserNotFound, ErrBadPassword, ...) so the HTTP boundary can
// translate them without the flow logic knowing about redirects or codes.
type Service struct {
	log       *slog.Logger
	cfg       Config
	store     *store.Store
	passwords password.Config
}

// NewService constructs a Service over the shared store.
func NewService(log *slog.Logger, cfg Config, st *store.Store, pw password.Config) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, cfg: cfg, store: st, passwords: pw}
}

// Issued is the result of a successful register or login.
type Issued struct {
	ID       uuid.UUID
	Session  store.Session
	Redirect string
}

// Register creates the account, then issues a session for it.
//
// The password is hashed before the store is touched; the store's
// CreateUser performs the uniqueness check and the insert atomically, so a
// concurrent duplicate registration surfaces as store.ErrUserExists.
func (s *Service) Register(ctx context.Context, now time.Time, username, plainPassword, appName string, tok secret.Token, ip string) (Issued, error) {
	hash, err := s.passwords.Hash(plainPassword)
	if err != nil {
		return Issued{}, err
	}

	if err := s.store.CreateUser(ctx, username, hash); err != nil {
		return Issued{}, err
	}

	return s.issueSession(ctx, now, username, appName, tok, ip)
}

// Login verifies the credential and issues a session.
// Unknown username -> store.ErrUserNotFound; wrong password -> ErrBadPassword.
func (s *Service) Login(ctx context.Context, now time.Time, username, plainPassword, appName string, tok secret.Token, ip string) (Issued, error) {
	hash, err := s.store.UserHash(ctx, username)
	if err != nil {
		return Issued{}, err
	}

	// Verification is the slow path; it runs with no store lock held.
	ok, err := s.passwords.Verify(hash, plainPassword)
	if err != nil {
		return Issued{}, err
	}
	if !ok {
		return Issued{}, ErrBadPassword
	}

	return s.issueSession(ctx, now, username, appName, tok, ip)
}

// issueSession mints the session and computes the post-auth redirect target.
func (s *Service) issueSession(ctx context.Context, now time.Time, username, appName string, tok secret.Token, ip string) (Issued, error) {
	id, sess, err := s.store.CreateSession(ctx, now, username, ip, appName)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		ID:       id,
		Session:  sess,
		Redirect: s.redirectTarget(ctx, appName, tok, id),
	}, nil
}

// redirectTarget resolves where a fresh session sends the browser.
//
// When the app exists and the presented token equals its secret, the target
// is the registered callback URL with "id=<session-id>" appended literally;
// apps register URLs shaped for that append (e.g. ending in "?" or "&").
// Anything else lands on "/".
func (s *Service) redirectTarget(ctx context.Context, appName string, tok secret.Token, id uuid.UUID) string {
	app, err := s.store.LookupApp(ctx, appName)
	if err != nil {
		if errors.Is(err, store.ErrAppNotFound) {
			s.log.Warn("broker.app.miss", "app", appName)
		}
		return "/"
	}
	if !tok.Matches(app.Secret) {
		return "/"
	}
	return app.URL + "id=" + id.String()
}

// Logout removes the session named by the request's cookie. A stale cookie
// naming an already-removed session is a quiet no-op.
func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	err := s.store.RemoveSession(ctx, id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil
	}
	return err
}

// DeleteAccount deletes the account owning the presented session plus that
// one session. Other live sessions of the account stay resident.
func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID) (string, error) {
	return s.store.DeleteAccount(ctx, id)
}

// Revoke removes target iff it belongs to the caller's user. The result
// carries no caller-visible signal; the handler redirects unconditionally.
func (s *Service) Revoke(ctx context.Context, callerID, targetID uuid.UUID) (bool, error) {
	return s.store.RevokeOwned(ctx, callerID, targetID)
}

// RegisterApp stores (or overwrites) an app registration with a fresh
// secret. The secret is disclosed through the log, which is the only place
// the registering party can read it back.
func (s *Service) RegisterApp(ctx context.Context, name, url string) (store.App, error) {
	app, err := s.store.PutApp(ctx, name, url)
	if err != nil {
		return store.App{}, err
	}
	s.log.Info("broker.app.registered", "name", name, "url", url, "secret", app.Secret)
	return app, nil
}

// Validated is the successful result of the app validation protocol.
type Validated struct {
	Username string
	App      string
}

// Validate runs the machine-to-machine validation protocol, in precedence
// order: unknown session -> store.ErrSessionNotFound; expired ->
// ErrSessionExpired; unknown app -> store.ErrAppNotFound; secret mismatch ->
// ErrSecretMismatch, and the probed session is removed so a failed handshake
// invalidates the session under probe.
func (s *Service) Validate(ctx context.Context, now time.Time, ssid uuid.UUID, appName string, tok secret.Token) (Validated, error) {
	sess, err := s.store.Session(ctx, ssid)
	if err != nil {
		return Validated{}, err
	}
	if !sess.Expires.After(now) {
		return Validated{}, ErrSessionExpired
	}

	app, err := s.store.LookupApp(ctx, appName)
	if err != nil {
		return Validated{}, err
	}

	if !tok.Matches(app.Secret) {
		if rmErr := s.store.RemoveSession(ctx, ssid); rmErr != nil && !errors.Is(rmErr, store.ErrSessionNotFound) {
			return Validated{}, rmErr
		}
		s.log.Warn("broker.validate.secret_mismatch", "app", appName, "session", ssid.String())
		return Validated{}, ErrSecretMismatch
	}

	return Validated{Username: sess.Username, App: sess.App}, nil
}

// Sessions lists the sessions owned by the given user.
func (s *Service) Sessions(ctx context.Context, username string) ([]store.OwnedSession, error) {
	return s.store.SessionsOf(ctx, username)
}
