package session

import (
	"errors"
	"time"

	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Lukazavrr/hotwheels-bot/internal/flow"
)

// ErrStaleReference is returned when a selection points at an index that
// is not part of the user's current render, e.g. a button surviving from
// an older screen, or when the user has no session at all.
var ErrStaleReference = errors.New("stale selection reference")

// MessageRef identifies one delivered chat message.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Session is the per-user in-memory record. Index is the snapshot taken
// at render time: display number to product id. Navigation always resolves
// against this snapshot, never against a fresh catalog query, so buttons
// keep meaning what they showed.
type Session struct {
	Category string
	Index    map[int]int64
	Active   []MessageRef
	Flow     flow.Context
}

// Manager provides thread-safe access to per-user sessions. The backing
// map is a TTL-expiring LRU, so idle users age out instead of growing the
// process without bound.
type Manager struct {
	mu       sync.Mutex
	sessions *expirable.LRU[int64, *Session]
}

// NewManager creates a manager bounded to size sessions with the given
// idle TTL.
func NewManager(size int, ttl time.Duration) *Manager {
	return &Manager{
		sessions: expirable.NewLRU[int64, *Session](size, nil, ttl),
	}
}

func (m *Manager) get(userID int64) (*Session, bool) {
	return m.sessions.Get(userID)
}

func (m *Manager) getOrCreate(userID int64) *Session {
	if s, ok := m.sessions.Get(userID); ok {
		return s
	}
	s := &Session{}
	m.sessions.Add(userID, s)
	return s
}

// BeginCategory replaces the user's category snapshot. The previous index
// mapping is overwritten wholesale; message lifecycle state is untouched.
func (m *Manager) BeginCategory(userID int64, category string, index map[int]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getOrCreate(userID)
	s.Category = category
	s.Index = index
}

// Category returns the user's active category, if any.
func (m *Manager) Category(userID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.get(userID); ok && s.Category != "" {
		return s.Category, true
	}
	return "", false
}

// Resolve maps a displayed index to the product id recorded at render
// time.
func (m *Manager) Resolve(userID int64, display int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.get(userID)
	if !ok || s.Index == nil {
		return 0, ErrStaleReference
	}
	id, ok := s.Index[display]
	if !ok {
		return 0, ErrStaleReference
	}
	return id, nil
}

// SetActiveMessages records the messages currently shown to the user.
func (m *Manager) SetActiveMessages(userID int64, refs []MessageRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getOrCreate(userID)
	s.Active = append([]MessageRef(nil), refs...)
}

// TakeActiveMessages returns the user's active messages and clears the
// list, so a crashed emission cannot retract the same set twice.
func (m *Manager) TakeActiveMessages(userID int64) []MessageRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.get(userID)
	if !ok {
		return nil
	}
	refs := s.Active
	s.Active = nil
	return refs
}

// SetFlow stores the user's conversation context. A session is created if
// the user has none, so a flow can start before any category was viewed.
func (m *Manager) SetFlow(userID int64, c flow.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getOrCreate(userID)
	s.Flow = c
}

// Flow returns the user's current conversation context, or nil.
func (m *Manager) Flow(userID int64) flow.Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.get(userID); ok {
		return s.Flow
	}
	return nil
}

// ClearFlow drops the user's conversation context.
func (m *Manager) ClearFlow(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.get(userID); ok {
		s.Flow = nil
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.Len()
}
