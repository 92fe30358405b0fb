package session

import (
	"context"
	"sync"
)

// Store persists session state across process restarts. The session bucket
// (credential + serialized principal) is cleared on logout and forced
// expiry; preferences (locale) are durable and survive both.
type Store interface {
	SaveSession(ctx context.Context, token string, principal []byte) error
	// LoadSession returns ok=false when no session is persisted.
	LoadSession(ctx context.Context) (token string, principal []byte, ok bool, err error)
	ClearSession(ctx context.Context) error

	SetPreference(ctx context.Context, key, value string) error
	Preference(ctx context.Context, key string) (value string, ok bool, err error)
}

// MemoryStore is an in-process Store used by tests and as a fallback when no
// state database path is configured.
type MemoryStore struct {
	mu        sync.Mutex
	token     string
	principal []byte
	hasState  bool
	prefs     map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]string)}
}

func (m *MemoryStore) SaveSession(_ context.Context, token string, principal []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.principal = append([]byte(nil), principal...)
	m.hasState = true
	return nil
}

func (m *MemoryStore) LoadSession(_ context.Context) (string, []byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasState {
		return "", nil, false, nil
	}
	return m.token, append([]byte(nil), m.principal...), true, nil
}

func (m *MemoryStore) ClearSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.principal = nil
	m.hasState = false
	return nil
}

func (m *MemoryStore) SetPreference(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = value
	return nil
}

func (m *MemoryStore) Preference(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.prefs[key]
	return v, ok, nil
}
