// Package seal provides the authenticated encryption and shard signing
// primitives for paper backups.
//
// A document is sealed once under a fresh 32-byte secret with
// XChaCha20-Poly1305; the associated data binds the format label and
// the document's Ed25519 verification key, so tampering with either
// the ciphertext or the embedded key material fails the tag check.
// Unseal is all-or-nothing: it returns either the exact original
// plaintext or ErrAuthenticationFailed, never partial output.
//
// The Ed25519 signing key exists only for the duration of one sealing
// operation: it is generated in Seal, used through SignShard to
// authenticate each shard, and zeroized by Close. Callers defer Close
// immediately so the key is cleared on every exit path.
package seal
