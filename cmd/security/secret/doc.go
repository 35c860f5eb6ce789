// Package secret provides opaque shared-secret primitives for gate.
//
// Registered apps authenticate to the broker with a per-app shared secret.
// This package is the single source of truth for how those secrets are
// generated and compared.
//
// Design goals:
// - Secrets are opaque random tokens (UUIDv4 strings, crypto/rand backed).
// - Presented credentials are carried as the untrusted Token type and are
//   only ever compared, in constant time, against a stored secret. They are
//   never coerced into any other identifier type.
package secret
