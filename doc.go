// Package authcore implements the core of a credential and token based
// authentication system: user registration and login, stateful refresh
// tokens with rotation, stateless access tokens, revocation, and an
// ownership authorization check.
//
// The package is transport agnostic. It exposes an Engine that an HTTP
// (or any other) layer drives; request parsing, cookies, and response
// encoding live with the caller. Collaborators are injected through the
// Builder:
//
//	engine, err := authcore.New().
//		WithConfig(cfg).
//		WithUserStore(users).
//		WithTokenStore(tokens).
//		Build()
//
// # Architecture boundaries
//
// Signature and expiry checks belong to the token subpackage and are
// purely computational. Revocation is state and belongs to the refresh
// token store. The Engine composes the two: a refresh token is accepted
// only when its signature verifies AND the store still holds it as
// active. Access tokens are never stored; revoking a refresh token does
// not invalidate access tokens already in flight, which stay usable
// until their short expiry.
//
// All errors returned to callers are sentinel values declared in this
// package (or wrap one), so transports can map them with errors.Is.
package authcore
