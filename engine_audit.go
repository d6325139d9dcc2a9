package authcore

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventRegisterSuccess   = "register_success"
	auditEventRegisterDuplicate = "register_duplicate"
	auditEventRegisterFailure   = "register_failure"
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventRefreshSuccess    = "refresh_success"
	auditEventRefreshInvalid    = "refresh_invalid"
	auditEventRefreshReuse      = "refresh_reuse_detected"
	auditEventForbidden         = "authorization_denied"
	auditEventLogout            = "logout"
	auditEventLogoutAll         = "logout_all"
	auditEventUserUpdated       = "user_updated"
	auditEventUserDeleted       = "user_deleted"
	auditEventTokenSweep        = "token_sweep"
)

// AuditErrorCode is the stable short form of an error placed in
// AuditEvent.Error. Codes are coarser than the sentinel errors so logs
// stay greppable across releases.
type AuditErrorCode string

const (
	auditErrDuplicateEmail     AuditErrorCode = "duplicate_email"
	auditErrWeakCredential     AuditErrorCode = "weak_credential"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrTokenInvalid       AuditErrorCode = "token_invalid"
	auditErrTokenRevoked       AuditErrorCode = "token_revoked"
	auditErrForbidden          AuditErrorCode = "forbidden"
	auditErrNotAuthenticated   AuditErrorCode = "not_authenticated"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrIssuance           AuditErrorCode = "issuance_failed"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicateEmail
	case errors.Is(err, ErrWeakCredential):
		return auditErrWeakCredential
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenRevoked):
		return auditErrTokenRevoked
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrForbidden):
		return auditErrForbidden
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrNotAuthenticated
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrIssuance):
		return auditErrIssuance
	default:
		return auditErrInternal
	}
}
