// Package broker implements gate's auth broker: the six request flows
// (register, login, logout, delete-account, revoke-session, register-app)
// plus the shared-secret-gated session validation endpoint consumed by
// registered apps.
//
// Structure:
//   - Service holds the flow logic and reports outcomes as sentinel errors;
//     it never writes HTTP.
//   - Handler is the boundary: it parses forms/queries/cookies, calls the
//     Service, and translates each outcome into the corresponding redirect,
//     status code, or JSON body.
//   - The session guard (guard.go) resolves a request's session cookie into
//     the (id, session, owning user) triple for endpoints that need caller
//     identity.
//
// Browser-facing flows signal business failures via redirect query
// parameters (err=exists|incorrect|notfound) and always answer 302; only
// the machine-facing /validate endpoint speaks status codes plus JSON.
package broker
