package authcore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rafaelpmaio/authcore/password"
	"github.com/rafaelpmaio/authcore/refreshstore"
	"github.com/rafaelpmaio/authcore/token"
	"github.com/rafaelpmaio/authcore/userstore"
)

// Engine is the authentication core. It is safe for concurrent use;
// all mutable state lives in the injected stores.
type Engine struct {
	config  Config
	users   userstore.Store
	tokens  refreshstore.Store
	hasher  password.Hasher
	jwt     *token.Manager
	audit   *auditDispatcher
	metrics *Metrics
	closed  atomic.Bool
}

// Close stops the audit dispatcher, draining any buffered events.
// Engine operations called after Close return ErrEngineClosed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.closed.CompareAndSwap(false, true) {
		e.audit.Close()
	}
}

func (e *Engine) checkOpen() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return nil
}

// AuditDropped reports how many audit events were discarded because
// the buffer was full. Always zero unless AuditConfig.DropIfFull is
// set.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the current counters. Empty when
// metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

// issueTokenPair signs an access/refresh pair for the user and persists
// the refresh side. Any failure surfaces as ErrIssuance and nothing is
// returned to the caller; a partially signed pair is discarded.
func (e *Engine) issueTokenPair(ctx context.Context, user *userstore.User) (TokenPair, error) {
	access, err := e.jwt.IssueAccess(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrIssuance, err)
	}
	refresh, err := e.jwt.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrIssuance, err)
	}

	rec := refreshstore.Record{
		UserID:     user.ID,
		Token:      refresh,
		ExpiresAt:  time.Now().Add(e.config.JWT.RefreshTTL),
		DeviceInfo: userAgentFromContext(ctx),
		IPAddress:  clientIPFromContext(ctx),
	}
	if _, err := e.tokens.Create(ctx, rec); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrIssuance, err)
	}

	e.metricInc(MetricTokensIssued)

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
