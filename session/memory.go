package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps records in a mutex-guarded map keyed by conversation
// id. The inactivity deadline is checked lazily on Get, so no background
// sweeper runs; an untouched conversation costs one map entry until its
// next read.
type memoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	records map[string]memoryEntry
	closed  bool
}

type memoryEntry struct {
	record   Record
	deadline time.Time
}

func (s *memoryStore) Get(ctx context.Context, conversationID string) (*Record, error) {
	s.mu.RLock()
	entry, ok := s.records[conversationID]
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return nil, ErrUnavailable
	}
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.deadline) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Save may have rearmed it.
		if cur, ok := s.records[conversationID]; ok && time.Now().After(cur.deadline) {
			delete(s.records, conversationID)
		}
		s.mu.Unlock()
		return nil, nil
	}

	record := entry.record
	return &record, nil
}

func (s *memoryStore) Save(ctx context.Context, record *Record) error {
	if record == nil || record.ConversationID == "" {
		return ErrInvalidConfig
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrUnavailable
	}

	stored := *record
	stored.UpdatedAt = time.Now()
	s.records[record.ConversationID] = memoryEntry{
		record:   stored,
		deadline: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrUnavailable
	}
	delete(s.records, conversationID)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}
