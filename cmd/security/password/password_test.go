package password

import (
	"errors"
	"strings"
	"testing"
)

// testConfig keeps Argon2id cheap enough for unit tests.
func testConfig() Config {
	return Config{
		Params: Params{
			MemoryKiB:   8 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	cfg := testConfig()

	enc, err := cfg.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(enc, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash encoding: %q", enc)
	}

	ok, err := cfg.Verify(enc, "pw1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}

	ok, err = cfg.Verify(enc, "wrong")
	if err != nil {
		t.Fatalf("Verify wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashIsSalted(t *testing.T) {
	cfg := testConfig()

	a, err := cfg.Hash("same-plaintext")
	if err != nil {
		t.Fatalf("Hash a: %v", err)
	}
	b, err := cfg.Hash("same-plaintext")
	if err != nil {
		t.Fatalf("Hash b: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same plaintext must differ (salted)")
	}

	for _, enc := range []string{a, b} {
		ok, err := cfg.Verify(enc, "same-plaintext")
		if err != nil || !ok {
			t.Fatalf("verify %q: ok=%v err=%v", enc, ok, err)
		}
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	cfg := testConfig()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
	}

	for _, enc := range cases {
		if _, err := cfg.Verify(enc, "pw"); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("Verify(%q): expected ErrInvalidHash, got %v", enc, err)
		}
	}
}

func TestVerifyRejectsOversizedParams(t *testing.T) {
	cfg := testConfig()

	// Params wildly above the configured limits must be refused before any work.
	enc := "$argon2id$v=19$m=1048576,t=40,p=64$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	if _, err := cfg.Verify(enc, "pw"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash for oversized params, got %v", err)
	}
}
