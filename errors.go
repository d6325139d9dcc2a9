package authcore

import "errors"

// Sentinel errors returned by Engine operations. Callers classify
// failures with errors.Is; the concrete message may carry additional
// context via wrapping.
var (
	// ErrDuplicateEmail is returned by Register when the email is
	// already bound to an existing user.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrWeakCredential is returned by Register when the password does
	// not meet the configured minimum strength.
	ErrWeakCredential = errors.New("password does not meet minimum requirements")

	// ErrInvalidCredentials is returned by Login for an unknown email
	// or a wrong password. The two cases are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired is returned when a token's signature is valid but
	// its lifetime has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed tokens, bad signatures,
	// and tokens of the wrong kind for the operation.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenRevoked is returned by Refresh when the presented refresh
	// token verifies cryptographically but is no longer active in the
	// store (rotated out, logged out, or swept).
	ErrTokenRevoked = errors.New("token revoked")

	// ErrNotAuthenticated is returned when an operation that requires a
	// verified caller receives no usable access token.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned by AuthorizeOwner when the authenticated
	// subject does not own the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound is returned by user lookup and mutation
	// operations for an unknown user ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrIssuance is returned when signing or persisting a new token
	// pair fails. Nothing is handed to the caller in that case.
	ErrIssuance = errors.New("token issuance failed")

	// ErrEngineClosed is returned once Close has been called.
	ErrEngineClosed = errors.New("engine closed")
)
