package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rafaelpmaio/authcore/userstore"
)

// GetUser returns the sanitized user with the given ID.
func (e *Engine) GetUser(ctx context.Context, id string) (*PublicUser, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	pub := sanitizeUser(user)
	return &pub, nil
}

// ListUsers returns every user, sanitized, in the store's stable order.
func (e *Engine) ListUsers(ctx context.Context) ([]PublicUser, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	users, err := e.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]PublicUser, 0, len(users))
	for i := range users {
		out = append(out, sanitizeUser(&users[i]))
	}
	return out, nil
}

// UpdateUser applies the non-nil fields of req to the user. Changing
// the email to one owned by another account fails with
// ErrDuplicateEmail.
func (e *Engine) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*PublicUser, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	stored, err := e.users.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrEmailTaken):
			return nil, ErrDuplicateEmail
		case errors.Is(err, userstore.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	e.emitAudit(ctx, auditEventUserUpdated, true, id, nil, nil)

	pub := sanitizeUser(stored)
	return &pub, nil
}

// DeleteUser removes the user and revokes all of their refresh tokens,
// so a deleted account cannot keep minting access tokens.
func (e *Engine) DeleteUser(ctx context.Context, id string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	ok, err := e.users.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}

	if _, err := e.tokens.RevokeAllForUser(ctx, id); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	e.emitAudit(ctx, auditEventUserDeleted, true, id, nil, nil)

	return nil
}
