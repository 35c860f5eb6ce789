// Package password provides password hashing and verification for gate.
//
// It implements Argon2id hashing using a PHC-like encoded string format:
// - Fixed, configurable cost parameters (overridable via environment)
// - A fresh random salt per hash, so equal plaintexts never hash equal
// - Strict hash decoding and verification with anti-DoS bounds
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify and are
//   validated accordingly.
// - Verification refuses hashes whose parameters exceed reasonable bounds.
package password
