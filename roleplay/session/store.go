package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilSession      = errors.New("session is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

// Store is the persistence contract used by the simulator. An unknown id is
// a normal, recoverable condition (ErrSessionNotFound), never a corruption
// signal. Implementations must be safe for concurrent access by distinct
// session ids; serializing turns against one id stays with the caller.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore holds sessions in process memory. Restarting loses them; that
// is within the store contract.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*Session
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*Session),
		now:  time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.data[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	s.Touch(m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, sessionID)
	return nil
}

// Len reports the number of live sessions, for operational visibility.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
