package secret

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewProducesDistinctCanonicalSecrets(t *testing.T) {
	const n = 1000

	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		s, err := New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := uuid.Parse(s); err != nil {
			t.Fatalf("secret %q is not a canonical UUID: %v", s, err)
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate secret after %d generations: %q", i, s)
		}
		seen[s] = struct{}{}
	}
}

func TestTokenMatches(t *testing.T) {
	cases := []struct {
		name   string
		token  Token
		stored string
		want   bool
	}{
		{name: "exact match", token: "aaaa-bbbb", stored: "aaaa-bbbb", want: true},
		{name: "mismatch same length", token: "aaaa-bbbb", stored: "aaaa-cccc", want: false},
		{name: "length mismatch", token: "short", stored: "much-longer-secret", want: false},
		{name: "empty token", token: "", stored: "aaaa-bbbb", want: false},
		{name: "empty stored", token: "aaaa-bbbb", stored: "", want: false},
		{name: "both empty", token: "", stored: "", want: false},
	}

	for _, tc := range cases {
		if got := tc.token.Matches(tc.stored); got != tc.want {
			t.Fatalf("%s: Matches=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestFromHeaderTrims(t *testing.T) {
	tok := FromHeader("  my-secret \n")
	if tok != "my-secret" {
		t.Fatalf("unexpected token: %q", tok)
	}
	if FromHeader("   ").Empty() != true {
		t.Fatalf("expected blank header to yield empty token")
	}
}
