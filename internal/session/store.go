package session

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the default in-process Store. Sessions live for the process
// lifetime unless deleted or reaped by Cleanup.
//
// Thread safety: all operations hold the store mutex, so every mutation is
// atomic. Returned sessions are deep copies; callers never observe concurrent
// mutation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[string][]string
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		byUser:   make(map[string][]string),
		now:      time.Now,
	}
}

// Create registers a new session for userID and returns its id.
func (s *MemoryStore) Create(userID, id string) string {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sessions[id] = &Session{
		ID:        id,
		UserID:    userID,
		Title:     "New Chat",
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byUser[userID] = append(s.byUser[userID], id)
	return id
}

// Get returns a copy of the session, or ErrNotFound.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(sess), nil
}

// List returns the user's sessions, most recently updated first.
func (s *MemoryStore) List(userID string) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	result := make([]*Session, 0, len(ids))
	for _, id := range ids {
		if sess, ok := s.sessions[id]; ok {
			result = append(result, copySession(sess))
		}
	}
	slices.SortFunc(result, func(a, b *Session) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return result
}

// AddMessage appends a message and bumps UpdatedAt. The first user message
// derives the session title. Unknown ids are a no-op returning false.
func (s *MemoryStore) AddMessage(id, role, content string, meta *Metadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}

	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
	if meta != nil {
		msg.ToolCalls = slices.Clone(meta.ToolCalls)
		msg.ToolResults = slices.Clone(meta.ToolResults)
	}

	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = s.bumped(sess.UpdatedAt)

	if len(sess.Messages) == 1 && role == RoleUser {
		sess.Title = DeriveTitle(content)
	}
	return true
}

// UpdateTitle replaces the title and bumps UpdatedAt.
func (s *MemoryStore) UpdateTitle(id, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Title = title
	sess.UpdatedAt = s.bumped(sess.UpdatedAt)
	return true
}

// Delete removes a session.
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

// Clear removes every session owned by userID.
func (s *MemoryStore) Clear(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range slices.Clone(s.byUser[userID]) {
		if s.deleteLocked(id) {
			deleted++
		}
	}
	delete(s.byUser, userID)
	return deleted
}

// Cleanup removes sessions whose UpdatedAt is older than maxAge.
func (s *MemoryStore) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	deleted := 0
	for _, id := range slices.Collect(maps.Keys(s.sessions)) {
		if s.sessions[id].UpdatedAt.Before(cutoff) {
			if s.deleteLocked(id) {
				deleted++
			}
		}
	}
	return deleted
}

// deleteLocked removes the session and its owner index entry.
// Caller must hold s.mu.
func (s *MemoryStore) deleteLocked(id string) bool {
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	if ids, ok := s.byUser[sess.UserID]; ok {
		if i := slices.Index(ids, id); i >= 0 {
			s.byUser[sess.UserID] = slices.Delete(ids, i, i+1)
		}
	}
	delete(s.sessions, id)
	return true
}

// bumped returns a timestamp strictly after prev, so UpdatedAt advances even
// when the clock has not (coarse clocks, injected test clocks).
func (s *MemoryStore) bumped(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}

func copySession(sess *Session) *Session {
	cp := *sess
	cp.Messages = slices.Clone(sess.Messages)
	return &cp
}
