package broker

import "errors"

// Flow outcomes not already covered by the store's sentinels.
// The handler owns the mapping from these to redirects and status codes.
var (
	// ErrBadPassword is returned when the username exists but the password
	// does not verify.
	ErrBadPassword = errors.New("incorrect password")

	// ErrSessionExpired is returned by the validation flow when the probed
	// session exists but its expiry has passed. No other flow checks expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrSecretMismatch is returned by the validation flow when the app
	// exists but the presented Authorization token does not equal its secret.
	ErrSecretMismatch = errors.New("app secret mismatch")
)
