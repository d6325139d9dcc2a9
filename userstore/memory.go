package userstore

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process [Store] guarded by a single mutex.
type Memory struct {
	mu      sync.Mutex
	byID    map[string]*User
	byEmail map[string]string
}

// NewMemory returns an empty in-memory user store.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

var _ Store = (*Memory)(nil)

// FindByID returns the user with the given id, or ErrNotFound.
func (m *Memory) FindByID(ctx context.Context, id string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// FindByEmail returns the user with the given email, or ErrNotFound.
func (m *Memory) FindByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m.byID[id]
	return &out, nil
}

// FindAll returns every stored user, ordered by creation time.
func (m *Memory) FindAll(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Save persists a new user, enforcing email uniqueness.
func (m *Memory) Save(ctx context.Context, u *User) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[u.Email]; taken {
		return nil, ErrEmailTaken
	}

	stored := *u
	m.byID[stored.ID] = &stored
	m.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

// Update replaces the stored user with the same ID.
func (m *Memory) Update(ctx context.Context, u *User) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[u.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if owner, taken := m.byEmail[u.Email]; taken && owner != u.ID {
		return nil, ErrEmailTaken
	}

	delete(m.byEmail, current.Email)
	stored := *u
	m.byID[stored.ID] = &stored
	m.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

// Delete removes the user with the given id.
func (m *Memory) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	delete(m.byID, id)
	delete(m.byEmail, u.Email)
	return true, nil
}
