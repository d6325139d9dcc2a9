package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rafaelpmaio/authcore/userstore"
)

// Register creates a new user and signs them in, returning the
// sanitized user together with a fresh token pair.
//
// The password is checked against the configured minimum length before
// any hashing work happens; too-short passwords fail with
// ErrWeakCredential. A taken email fails with ErrDuplicateEmail. The
// email is stored as given, minus surrounding whitespace.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrWeakCredential)
	}
	if len(req.Password) < e.config.Password.MinLength {
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrWeakCredential, nil)
		return nil, ErrWeakCredential
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, nil)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &userstore.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Age:          req.Age,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := e.users.Save(ctx, user); err != nil {
		if errors.Is(err, userstore.ErrEmailTaken) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", ErrDuplicateEmail, func() map[string]string {
				return map[string]string{"email": email}
			})
			return nil, ErrDuplicateEmail
		}
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, nil)
		return nil, fmt.Errorf("save user: %w", err)
	}

	tokens, err := e.issueTokenPair(ctx, user)
	if err != nil {
		// The account exists but sign-in failed; the caller can still
		// log in normally.
		e.emitAudit(ctx, auditEventRegisterFailure, false, user.ID, err, nil)
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, user.ID, nil, nil)

	return &LoginResult{
		User:   sanitizeUser(user),
		Tokens: tokens,
	}, nil
}
