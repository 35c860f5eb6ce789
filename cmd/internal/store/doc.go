// Package store holds gate's entire mutable state: the credential map,
// the session map, and the app registry, guarded by one coarse lock.
//
// Concurrency contract:
//   - Every compound check-then-act sequence (register's "is the username
//     free?" + insert, delete-account's resolve + delete, revoke's ownership
//     check + remove) is a single Store method executed entirely under the
//     write lock, so concurrent callers observe it atomically.
//   - Read-only paths (session lookup, guard resolution) share the read lock.
//   - Slow work (Argon2id hashing, request body reads) must happen before a
//     Store call; no method performs I/O or key stretching under the lock.
//
// There is no background eviction: an expired session stays resident until
// one of the explicit removal paths deletes it. Only the validation flow
// ever inspects the expiry field.
package store
