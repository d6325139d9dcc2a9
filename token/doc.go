// Package token issues and verifies the signed access/refresh token pair used by the
// authentication engine.
//
// Both kinds are self-contained HS256 JWTs carrying {uid, email, kind, iat, exp} and
// are verifiable without a network round-trip. The kind tag is part of the signed
// claims, and each kind is signed with its own secret, so an access token can never be
// replayed as a refresh token or vice versa.
//
// # Architecture boundaries
//
// This package owns signing and stateless verification only. Revocation is stateful
// and belongs to the refresh-token store; [Manager.ParseRefresh] succeeding is
// necessary but not sufficient to accept a refresh token.
package token
