package secret

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh opaque app secret in canonical UUID string form.
// Generation uses a cryptographically secure random source (crypto/rand).
func New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Token is a caller-supplied credential, typically the raw value of an
// Authorization header. It is untrusted input: the only supported operation
// is a constant-time comparison against a server-stored secret.
type Token string

// FromHeader wraps a raw header value as a Token, trimming surrounding space.
func FromHeader(raw string) Token {
	return Token(strings.TrimSpace(raw))
}

// Empty reports whether the token carries no value.
func (t Token) Empty() bool { return len(t) == 0 }

// Matches reports whether the token equals the stored secret.
// The comparison is constant-time; length is checked first because
// subtle.ConstantTimeCompare requires equal-length inputs.
func (t Token) Matches(stored string) bool {
	if len(t) == 0 || len(stored) == 0 || len(t) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(t), []byte(stored)) == 1
}
