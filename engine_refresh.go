package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafaelpmaio/authcore/refreshstore"
	"github.com/rafaelpmaio/authcore/token"
	"github.com/rafaelpmaio/authcore/userstore"
)

// Refresh rotates a refresh token: the presented token is revoked and a
// brand new access/refresh pair is issued. Each refresh token is
// therefore good for exactly one refresh.
//
// A token that fails signature or kind checks returns ErrTokenInvalid;
// one past its expiry returns ErrTokenExpired. A token that verifies
// but is no longer active in the store returns ErrTokenRevoked - this
// is the reuse-detection path, covering rotated-out, logged-out, and
// swept tokens alike.
//
// If issuing the replacement pair fails, the old token stays revoked.
// Rolling it back would reopen the reuse window the rotation exists to
// close; the user recovers by logging in again.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	claims, err := e.jwt.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		mapped := mapTokenError(err)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", mapped, nil)
		return nil, mapped
	}

	rec, err := e.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, refreshstore.ErrNotFound) {
			// Signature is good but the store no longer holds the
			// token as active: rotation replay or post-logout use.
			e.metricInc(MetricRefreshReuse)
			e.emitAudit(ctx, auditEventRefreshReuse, false, claims.UserID, ErrTokenRevoked, nil)
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	won, err := e.tokens.Revoke(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !won {
		// Another caller revoked the record between FindByToken and
		// here. Only the revoker gets the new pair; everyone else is a
		// replay.
		e.metricInc(MetricRefreshReuse)
		e.emitAudit(ctx, auditEventRefreshReuse, false, claims.UserID, ErrTokenRevoked, nil)
		return nil, ErrTokenRevoked
	}

	user, err := e.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, claims.UserID, ErrTokenInvalid, nil)
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	tokens, err := e.issueTokenPair(ctx, user)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.ID, err, nil)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.ID, nil, nil)

	return &LoginResult{
		User:   sanitizeUser(user),
		Tokens: tokens,
	}, nil
}

// mapTokenError translates token package errors to this package's
// sentinels.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
