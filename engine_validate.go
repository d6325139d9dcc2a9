package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rafaelpmaio/authcore/token"
	"github.com/rafaelpmaio/authcore/userstore"
)

// VerifyAccess checks an access token's signature, expiry, and kind,
// returning its claims. The check is purely computational: no store is
// consulted, which is what keeps per-request authentication cheap.
//
// An empty token returns ErrNotAuthenticated; an expired one
// ErrTokenExpired; anything else that fails returns ErrTokenInvalid.
func (e *Engine) VerifyAccess(ctx context.Context, accessToken string) (*token.Claims, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}

	start := time.Now()
	claims, err := e.jwt.ParseAccess(accessToken)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))

	if err != nil {
		return nil, mapTokenError(err)
	}
	return claims, nil
}

// AuthorizeOwner verifies the access token and then checks that its
// subject is the owner of the target resource. A failed ownership check
// returns ErrForbidden even when the target user does not exist, so the
// response does not reveal which IDs are real.
func (e *Engine) AuthorizeOwner(ctx context.Context, accessToken, ownerID string) (*token.Claims, error) {
	claims, err := e.VerifyAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if ownerID == "" || claims.UserID != ownerID {
		e.emitAudit(ctx, auditEventForbidden, false, claims.UserID, ErrForbidden, func() map[string]string {
			return map[string]string{"target": ownerID}
		})
		return nil, ErrForbidden
	}
	return claims, nil
}

// Profile resolves a verified access token to the current sanitized
// user record. Unlike VerifyAccess this does hit the user store, so the
// result reflects updates made after the token was issued.
func (e *Engine) Profile(ctx context.Context, accessToken string) (*PublicUser, error) {
	claims, err := e.VerifyAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := e.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	pub := sanitizeUser(user)
	return &pub, nil
}
