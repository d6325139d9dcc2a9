// Package password implements the one-way credential hashing capability used by the
// authentication engine: Hash, Verify, and NeedsRehash.
//
// Two interchangeable implementations are provided. [Bcrypt] is the default and
// matches the cost-factor model the rest of the system assumes; [Argon2] produces
// PHC-encoded argon2id hashes:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification is constant-time in both implementations.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Log plaintext passwords.
//   - Import any other authcore package.
package password
