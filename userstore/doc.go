// Package userstore holds the user-record collaborator consumed by the
// authentication engine: one capability-set [Store] interface with find, save,
// update, and delete operations, and a mutex-guarded in-memory implementation.
//
// Email uniqueness is enforced at write time by implementations; the unique id
// is immutable after creation.
//
// # What this package must NOT do
//
//   - Hash, verify, or even inspect credentials — PasswordHash is opaque here.
//   - Sanitize records for outward serialization; that is the engine's job.
//   - Import any other authcore package.
package userstore
