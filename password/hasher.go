package password

// Hasher is the one-way hashing capability consumed by the engine. The
// plaintext never leaves Hash or Verify, and comparisons are constant-time.
type Hasher interface {
	// Hash derives a storable, self-describing hash from the plaintext.
	Hash(secret string) (string, error)

	// Verify reports whether secret matches the stored encoded hash. A
	// mismatch is (false, nil); errors are reserved for undecodable hashes.
	Verify(secret, encoded string) (bool, error)

	// NeedsRehash reports whether the stored hash was produced with weaker
	// parameters than currently configured, so callers can re-hash on the
	// next successful verification.
	NeedsRehash(encoded string) (bool, error)
}
