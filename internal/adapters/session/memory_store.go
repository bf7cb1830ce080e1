package session

import (
	"context"
	"sync"
	"time"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

type memoryEntry struct {
	state     *entities.ConversationState
	expiresAt time.Time
}

// MemoryStore keeps conversation state in a mutex-guarded map. It is the
// default store for single-process deployments and the CLI. State is
// cloned on the way in and out so callers never share memory with the
// store. A zero TTL disables expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves the state for a session id. Expired entries are evicted
// lazily and reported as not found.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*entities.ConversationState, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.NewNotFoundError("session " + sessionID + " not found")
	}

	if s.ttl > 0 && s.now().After(e.expiresAt) {
		s.mu.Lock()
		if cur, still := s.entries[sessionID]; still && s.now().After(cur.expiresAt) {
			delete(s.entries, sessionID)
		}
		s.mu.Unlock()
		return nil, apperrors.NewNotFoundError("session " + sessionID + " not found")
	}

	return e.state.Clone(), nil
}

// Save persists the state and refreshes its TTL.
func (s *MemoryStore) Save(ctx context.Context, state *entities.ConversationState) error {
	if state == nil || state.SessionID == "" {
		return apperrors.NewValidationError("session state has no session id")
	}

	s.mu.Lock()
	s.entries[state.SessionID] = memoryEntry{
		state:     state.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// Len reports how many sessions are held, expired entries included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ repositories.SessionRepository = (*MemoryStore)(nil)
