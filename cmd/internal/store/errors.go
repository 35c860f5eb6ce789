package store

import "errors"

// Sentinel errors (stable for errors.Is and for mapping to flow outcomes).
var (
	ErrUserExists      = errors.New("user exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAppNotFound     = errors.New("app not found")
)
