package broker

import (
	"net/http"

	"github.com/google/uuid"

	"gate/cmd/internal/store"
)

// cookieName is the fixed session cookie name; the value is the session
// id's canonical UUID string.
const cookieName = "session"

type guardStatus int

const (
	guardOK guardStatus = iota
	guardNoCookie
	guardMalformed
	guardMiss
)

// caller is the resolved (session id, session, owning user) triple.
type caller struct {
	ID      uuid.UUID
	Session store.Session
	User    store.User
}

// resolveCaller reads the request's session cookie and resolves it through
// the store. It reports guardMiss when the session is unknown or its owner
// no longer exists.
//
// Expiry is deliberately not checked here: endpoints behind the guard treat
// expired sessions as still valid, and only the validation flow consults
// the expiry field.
func (h *Handler) resolveCaller(r *http.Request) (caller, guardStatus) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return caller{}, guardNoCookie
	}

	id, err := uuid.Parse(c.Value)
	if err != nil {
		return caller{}, guardMalformed
	}

	sess, u, err := h.svc.store.Resolve(r.Context(), id)
	if err != nil {
		return caller{}, guardMiss
	}

	return caller{ID: id, Session: sess, User: u}, guardOK
}
