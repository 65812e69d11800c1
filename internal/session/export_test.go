package session

import "time"

// SetNow overrides the manager clock in tests.
func (m *Manager) SetNow(now func() time.Time) {
	m.now = now
}
