// Package refreshstore tracks issued refresh tokens: their owner, expiry, and
// revocation state. It is the authoritative source for the stateful half of refresh
// verification — a refresh token whose signature checks out is still rejected unless
// this store holds a matching, non-revoked, non-expired record.
//
// Revocation is monotonic: once a record is revoked it can never become active
// again, and concurrent Revoke/FindByToken on the same token never report a revoked
// token as valid. Records are only hard-deleted by [Store.DeleteExpired], which
// removes records already past their expiry.
//
// Two implementations are provided: [Memory], a mutex-guarded map for tests and
// single-process deployments, and [Redis], which keys records by token hash and
// lets key TTLs shadow record expiry.
//
// # What this package must NOT do
//
//   - Interpret or verify token signatures — the token string is opaque here.
//   - Un-revoke a record, or delete records that have not expired.
//   - Import any other authcore package.
package refreshstore
