package store

import "sync"

// HistoryStore keeps each user's generated content in insertion order.
type HistoryStore struct {
	mu   sync.RWMutex
	logs map[string][]ChatMessage
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{logs: make(map[string][]ChatMessage)}
}

// Init makes sure userID has an entry, even if empty.
func (s *HistoryStore) Init(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[userID]; !ok {
		s.logs[userID] = []ChatMessage{}
	}
}

// Append adds msg at the end of userID's log, creating the log if needed.
func (s *HistoryStore) Append(userID string, msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[userID] = append(s.logs[userID], msg)
}

// List returns a copy of userID's log. Unknown users get an empty, non-nil slice.
func (s *HistoryStore) List(userID string) []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.logs[userID]
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

func (s *HistoryStore) All() map[string][]ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]ChatMessage, len(s.logs))
	for id, msgs := range s.logs {
		cp := make([]ChatMessage, len(msgs))
		copy(cp, msgs)
		out[id] = cp
	}
	return out
}

func (s *HistoryStore) Replace(logs map[string][]ChatMessage) {
	m := make(map[string][]ChatMessage, len(logs))
	for id, msgs := range logs {
		cp := make([]ChatMessage, len(msgs))
		copy(cp, msgs)
		m[id] = cp
	}

	s.mu.Lock()
	s.logs = m
	s.mu.Unlock()
}
