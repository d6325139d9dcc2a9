package authcore

import (
	"context"
	"fmt"
	"strconv"
)

// Logout revokes the refresh token, ending that session. Revocation is
// idempotent: logging out an unknown or already-revoked token succeeds,
// so a retried logout never surfaces an error to the user.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	if _, err := e.tokens.RevokeByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", nil, nil)

	return nil
}

// LogoutAll revokes every active refresh token belonging to the user
// and reports how many were revoked. Outstanding access tokens stay
// valid until their own expiry.
func (e *Engine) LogoutAll(ctx context.Context, userID string) (int, error) {
	if err := e.checkOpen(); err != nil {
		return 0, err
	}

	n, err := e.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, nil, func() map[string]string {
		return map[string]string{"revoked": strconv.Itoa(n)}
	})

	return n, nil
}

// LogoutAllByAccessToken is LogoutAll keyed by a verified access token
// instead of a raw user ID, for callers that only hold the bearer
// credential.
func (e *Engine) LogoutAllByAccessToken(ctx context.Context, accessToken string) (int, error) {
	claims, err := e.VerifyAccess(ctx, accessToken)
	if err != nil {
		return 0, err
	}
	return e.LogoutAll(ctx, claims.UserID)
}

// SweepExpiredTokens removes refresh token records whose expiry has
// passed, returning the number removed. Expired tokens already fail
// every lookup; the sweep only reclaims storage.
func (e *Engine) SweepExpiredTokens(ctx context.Context) (int, error) {
	if err := e.checkOpen(); err != nil {
		return 0, err
	}

	n, err := e.tokens.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	e.metrics.Add(MetricTokensSwept, uint64(n))
	e.emitAudit(ctx, auditEventTokenSweep, true, "", nil, func() map[string]string {
		return map[string]string{"removed": strconv.Itoa(n)}
	})

	return n, nil
}
