package zones

import (
	"sync"

	"stagefront/internal/upstream"
)

// Manager hands out the staging session for each event, creating it on
// first access. Sessions are per event and live until Reset.
type Manager struct {
	mu       sync.Mutex
	client   upstream.Transport
	sessions map[string]*Session
}

func NewManager(client upstream.Transport) *Manager {
	return &Manager{
		client:   client,
		sessions: make(map[string]*Session),
	}
}

// Session returns the editing session for an event, creating it if needed.
func (m *Manager) Session(eventID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[eventID]
	if !ok {
		sess = NewSession(eventID, m.client)
		m.sessions[eventID] = sess
	}
	return sess
}

// Reset discards an event's session so the next access reloads from the
// remote API.
func (m *Manager) Reset(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, eventID)
}
