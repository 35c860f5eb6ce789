package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func mustCreateUser(t *testing.T, s *Store, username string) {
	t.Helper()
	if err := s.CreateUser(context.Background(), username, "hash-"+username); err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
}

func mustCreateSession(t *testing.T, s *Store, username string) uuid.UUID {
	t.Helper()
	id, _, err := s.CreateSession(context.Background(), time.Now().UTC(), username, "127.0.0.1", "broker")
	if err != nil {
		t.Fatalf("CreateSession(%q): %v", username, err)
	}
	return id
}

func TestCreateUserConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, "alice", "hash-1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, "alice", "hash-2"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("second CreateUser: expected ErrUserExists, got %v", err)
	}

	// Exactly one credential record, and it is the first one.
	hash, err := s.UserHash(ctx, "alice")
	if err != nil {
		t.Fatalf("UserHash: %v", err)
	}
	if hash != "hash-1" {
		t.Fatalf("conflicting register overwrote the credential: %q", hash)
	}

	users, _, _ := s.Counts()
	if users != 1 {
		t.Fatalf("expected 1 user, got %d", users)
	}
}

func TestConcurrentRegistrationLinearizable(t *testing.T) {
	s := New()
	ctx := context.Background()

	const attempts = 64
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateUser(ctx, "alice", "h")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrUserExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", wins)
	}
}

func TestCreateSessionFixedExpiryAndIP(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreateUser(t, s, "alice")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, sess, err := s.CreateSession(ctx, now, "alice", "203.0.113.9", "calendar")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if got, want := sess.Expires, now.Add(SessionTTL); !got.Equal(want) {
		t.Fatalf("expiry=%v want=%v", got, want)
	}
	if sess.IP != "203.0.113.9" || sess.App != "calendar" || sess.Username != "alice" {
		t.Fatalf("unexpected session record: %+v", sess)
	}

	back, err := s.Session(ctx, id)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if back != sess {
		t.Fatalf("stored session differs: %+v vs %+v", back, sess)
	}
}

func TestCreateSessionRequiresExistingUser(t *testing.T) {
	s := New()
	_, _, err := s.CreateSession(context.Background(), time.Now().UTC(), "ghost", "1.2.3.4", "broker")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSessionIDsUniqueAndRandom(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreateUser(t, s, "alice")

	const n = 10_000
	now := time.Now().UTC()
	seen := make(map[uuid.UUID]struct{}, n)

	for i := 0; i < n; i++ {
		id, _, err := s.CreateSession(ctx, now, "alice", "127.0.0.1", "broker")
		if err != nil {
			t.Fatalf("CreateSession #%d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("session id collision after %d ids: %s", i, id)
		}
		seen[id] = struct{}{}

		// UUIDv4 under RFC 4122 variant carries 122 randomness-derived bits.
		if id.Version() != 4 {
			t.Fatalf("id %s: version=%d want=4", id, id.Version())
		}
		if id.Variant() != uuid.RFC4122 {
			t.Fatalf("id %s: variant=%v want=RFC4122", id, id.Variant())
		}
	}
}

func TestRemoveSessionIsPrecise(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")

	target := mustCreateSession(t, s, "alice")
	aliceOther := mustCreateSession(t, s, "alice")
	bobs := mustCreateSession(t, s, "bob")

	if err := s.RemoveSession(ctx, target); err != nil {
		t.Fatalf("RemoveSession: %v", err)
	}
	if _, err := s.Session(ctx, target); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("target session should be gone, got %v", err)
	}
	for _, id := range []uuid.UUID{aliceOther, bobs} {
		if _, err := s.Session(ctx, id); err != nil {
			t.Fatalf("unrelated session %s removed: %v", id, err)
		}
	}

	if err := s.RemoveSession(ctx, target); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("double remove: expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteAccountRemovesOnlyPresentedSession(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreateUser(t, s, "alice")

	presented := mustCreateSession(t, s, "alice")
	other := mustCreateSession(t, s, "alice")

	username, err := s.DeleteAccount(ctx, presented)
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if username != "alice" {
		t.Fatalf("unexpected owner: %q", username)
	}

	if _, err := s.UserHash(ctx, "alice"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("user record should be gone, got %v", err)
	}
	if _, err := s.Session(ctx, presented); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("presented session should be gone, got %v", err)
	}

	// The account's other session is orphaned, not cleaned up.
	if _, err := s.Session(ctx, other); err != nil {
		t.Fatalf("other session should survive (no cascading revoke): %v", err)
	}
	// But the guard path refuses to resolve it.
	if _, _, err := s.Resolve(ctx, other); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("orphaned session should not resolve, got %v", err)
	}
}

func TestRevokeOwnedChecksOwnership(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "mallory")

	aliceA := mustCreateSession(t, s, "alice")
	aliceB := mustCreateSession(t, s, "alice")
	mallorys := mustCreateSession(t, s, "mallory")

	// Cross-user revoke leaves the target untouched.
	removed, err := s.RevokeOwned(ctx, mallorys, aliceA)
	if err != nil || removed {
		t.Fatalf("cross-user revoke: removed=%v err=%v", removed, err)
	}
	if _, err := s.Session(ctx, aliceA); err != nil {
		t.Fatalf("target session must survive cross-user revoke: %v", err)
	}

	// Same-owner revoke removes exactly the target.
	removed, err = s.RevokeOwned(ctx, aliceA, aliceB)
	if err != nil || !removed {
		t.Fatalf("same-owner revoke: removed=%v err=%v", removed, err)
	}
	if _, err := s.Session(ctx, aliceB); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("target should be removed, got %v", err)
	}
	if _, err := s.Session(ctx, aliceA); err != nil {
		t.Fatalf("caller session must survive: %v", err)
	}

	// Unknown caller or target is a quiet no-op.
	if removed, err := s.RevokeOwned(ctx, uuid.New(), aliceA); err != nil || removed {
		t.Fatalf("unknown caller: removed=%v err=%v", removed, err)
	}
	if removed, err := s.RevokeOwned(ctx, aliceA, uuid.New()); err != nil || removed {
		t.Fatalf("unknown target: removed=%v err=%v", removed, err)
	}
}

func TestSessionsOfSnapshots(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreateUser(t, s, "alice")
	mustCreateUser(t, s, "bob")

	want := map[uuid.UUID]struct{}{
		mustCreateSession(t, s, "alice"): {},
		mustCreateSession(t, s, "alice"): {},
	}
	mustCreateSession(t, s, "bob")

	got, err := s.SessionsOf(ctx, "alice")
	if err != nil {
		t.Fatalf("SessionsOf: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sessions, got %d", len(want), len(got))
	}
	for _, os := range got {
		if _, ok := want[os.ID]; !ok {
			t.Fatalf("unexpected session %s in listing", os.ID)
		}
		if os.Username != "alice" {
			t.Fatalf("foreign session in listing: %+v", os)
		}
	}
}

func TestPutAppOverwriteAndDistinctSecrets(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.PutApp(ctx, "calendar", "https://cal.example/cb?")
	if err != nil {
		t.Fatalf("PutApp: %v", err)
	}

	// Re-registration overwrites; the old secret stops matching.
	second, err := s.PutApp(ctx, "calendar", "https://cal.example/v2?")
	if err != nil {
		t.Fatalf("PutApp overwrite: %v", err)
	}
	if second.Secret == first.Secret {
		t.Fatalf("re-registration must mint a fresh secret")
	}

	app, err := s.LookupApp(ctx, "calendar")
	if err != nil {
		t.Fatalf("LookupApp: %v", err)
	}
	if app != second {
		t.Fatalf("lookup returned stale record: %+v", app)
	}

	if _, err := s.LookupApp(ctx, "nope"); !errors.Is(err, ErrAppNotFound) {
		t.Fatalf("expected ErrAppNotFound, got %v", err)
	}

	// Secrets never repeat across many registrations.
	seen := map[string]struct{}{first.Secret: {}, second.Secret: {}}
	for i := 0; i < 1000; i++ {
		app, err := s.PutApp(ctx, "churn", "https://churn.example/cb?")
		if err != nil {
			t.Fatalf("PutApp #%d: %v", i, err)
		}
		if _, dup := seen[app.Secret]; dup {
			t.Fatalf("duplicate app secret after %d registrations", i)
		}
		seen[app.Secret] = struct{}{}
	}
}

func TestResolve(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreateUser(t, s, "alice")
	id := mustCreateSession(t, s, "alice")

	sess, u, err := s.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.Username != "alice" || u.PasswordHash == "" {
		t.Fatalf("unexpected resolution: sess=%+v user=%+v", sess, u)
	}

	if _, _, err := s.Resolve(ctx, uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown id: expected ErrSessionNotFound, got %v", err)
	}
}

func TestContextCancellationShortCircuits(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.CreateUser(ctx, "alice", "h"); !errors.Is(err, context.Canceled) {
		t.Fatalf("CreateUser: expected context.Canceled, got %v", err)
	}
	if _, _, err := s.CreateSession(ctx, time.Now().UTC(), "alice", "", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("CreateSession: expected context.Canceled, got %v", err)
	}
}
