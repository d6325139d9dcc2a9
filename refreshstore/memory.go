package refreshstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process [Store] guarded by a single mutex, giving
// linearizable revoke-then-read behavior per record.
type Memory struct {
	mu      sync.Mutex
	byID    map[string]*Record
	byToken map[string]string
	byUser  map[string]map[string]struct{}
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]*Record),
		byToken: make(map[string]string),
		byUser:  make(map[string]map[string]struct{}),
	}
}

var _ Store = (*Memory)(nil)

// Create persists rec, assigning ID and CreatedAt.
func (m *Memory) Create(ctx context.Context, rec Record) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := rec
	m.byID[stored.ID] = &stored
	m.byToken[stored.Token] = stored.ID
	if m.byUser[stored.UserID] == nil {
		m.byUser[stored.UserID] = make(map[string]struct{})
	}
	m.byUser[stored.UserID][stored.ID] = struct{}{}

	out := stored
	return &out, nil
}

// FindByToken returns the active record for tokenStr, or ErrNotFound.
func (m *Memory) FindByToken(ctx context.Context, tokenStr string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[tokenStr]
	if !ok {
		return nil, ErrNotFound
	}
	rec := m.byID[id]
	if rec == nil || rec.Revoked || rec.Expired(time.Now()) {
		return nil, ErrNotFound
	}

	out := *rec
	return &out, nil
}

// FindByUserID returns all active records owned by userID.
func (m *Memory) FindByUserID(ctx context.Context, userID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var out []Record
	for id := range m.byUser[userID] {
		rec := m.byID[id]
		if rec == nil || rec.Revoked || rec.Expired(now) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Revoke marks the record with the given ID as revoked. Only the call
// that performs the active→revoked transition reports true, so racing
// callers can tell which one of them won.
func (m *Memory) Revoke(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok || rec.Revoked {
		return false, nil
	}
	rec.Revoked = true
	return true, nil
}

// RevokeByToken marks the record holding tokenStr as revoked.
func (m *Memory) RevokeByToken(ctx context.Context, tokenStr string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[tokenStr]
	if !ok {
		return false, nil
	}
	rec, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	rec.Revoked = true
	return true, nil
}

// RevokeAllForUser revokes every active record owned by userID.
func (m *Memory) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id := range m.byUser[userID] {
		rec := m.byID[id]
		if rec == nil || rec.Revoked {
			continue
		}
		rec.Revoked = true
		count++
	}
	return count, nil
}

// DeleteExpired removes records past their expiry.
func (m *Memory) DeleteExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	count := 0
	for id, rec := range m.byID {
		if !rec.Expired(now) {
			continue
		}
		delete(m.byID, id)
		delete(m.byToken, rec.Token)
		if users := m.byUser[rec.UserID]; users != nil {
			delete(users, id)
			if len(users) == 0 {
				delete(m.byUser, rec.UserID)
			}
		}
		count++
	}
	return count, nil
}
