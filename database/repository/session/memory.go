package sessionRepo

import (
	"context"
	"sync"
	"time"

	"calbook/models"
)

type memoryEntry struct {
	session   *models.BookingSession
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process. Expired entries are dropped
// lazily on access.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, conversationID string) (*models.BookingSession, error) {
	s.mu.RLock()
	entry, ok := s.entries[conversationID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		if current, still := s.entries[conversationID]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(s.entries, conversationID)
		}
		s.mu.Unlock()
		return nil, nil
	}
	return entry.session.Clone(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.BookingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = memoryEntry{session: session.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, conversationID)
	return nil
}

func (s *MemorySessionStore) Ping(context.Context) error { return nil }
