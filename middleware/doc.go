// Package middleware exposes HTTP adapters over the authcore Engine.
//
//   - [Guard] — requires a valid access token, injects claims into the
//     request context.
//   - [RequireOwner] — Guard plus an ownership check against a path
//     value.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does not
// implement authentication logic itself: token parsing and authorization
// decisions are delegated to the Engine, and this package only maps the
// resulting errors to status codes.
package middleware
