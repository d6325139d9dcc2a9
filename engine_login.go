package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rafaelpmaio/authcore/userstore"
)

// Login verifies an email/password pair and issues a fresh token pair.
//
// Unknown email and wrong password both return ErrInvalidCredentials;
// nothing in the result distinguishes them, so the API cannot be used
// to enumerate accounts.
func (e *Engine) Login(ctx context.Context, email, secret string) (*LoginResult, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)

	user, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := e.hasher.Verify(secret, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	tokens, err := e.issueTokenPair(ctx, user)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)

	return &LoginResult{
		User:   sanitizeUser(user),
		Tokens: tokens,
	}, nil
}
