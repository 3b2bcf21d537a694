package state

import (
	"sync"
	"time"
)

// DefaultIdleTTL evicts sessions abandoned mid-dialogue so the map does
// not grow with every user id ever seen.
const DefaultIdleTTL = 30 * time.Minute

// sweepEvery throttles eviction scans.
const sweepEvery = time.Minute

type entry struct {
	session *Session
	touched time.Time
}

type memoryManager struct {
	mu        sync.RWMutex
	sessions  map[int64]*entry
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryManager constructs an in-memory Manager. A non-positive ttl
// falls back to DefaultIdleTTL.
func NewMemoryManager(ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &memoryManager{
		sessions: make(map[int64]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// sweep drops sessions idle past the TTL. Caller must hold the write lock.
func (m *memoryManager) sweep() {
	now := m.now()
	if now.Sub(m.lastSweep) < sweepEvery {
		return
	}
	m.lastSweep = now
	for id, e := range m.sessions {
		if now.Sub(e.touched) > m.ttl {
			delete(m.sessions, id)
		}
	}
}

// getOrCreate returns the live session entry for a user, creating the
// default idle one if needed. Caller must hold the write lock.
func (m *memoryManager) getOrCreate(userID int64) *entry {
	e, ok := m.sessions[userID]
	if !ok {
		e = &entry{session: &Session{State: StateIdle, TempData: make(map[string]interface{})}}
		m.sessions[userID] = e
	}
	e.touched = m.now()
	return e
}

// SetState sets the FSM state for the given user.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.getOrCreate(userID).session.State = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[userID]; ok {
		return e.session.State
	}
	return StateIdle
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *memoryManager) SetTemp(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.getOrCreate(userID).session.TempData[key] = value
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *memoryManager) GetTemp(userID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	val, ok := e.session.TempData[key]
	return val, ok
}

// ClearTemp removes a temporary key/value pair for the given user session.
func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[userID]; ok {
		delete(e.session.TempData, key)
	}
}

// Active reports the number of live sessions.
func (m *memoryManager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
