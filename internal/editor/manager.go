// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks the live editing session per customization so the
// autosave debounce and in-flight turn guard survive across HTTP requests.
// Sessions are created lazily on the first turn and flushed on close.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// GetOrOpen returns the live session for a customization, opening one via
// open() when none exists. The open callback runs under the manager lock,
// so concurrent first turns create exactly one session.
func (m *Manager) GetOrOpen(id uuid.UUID, open func() (*Session, error)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s, nil
	}

	s, err := open()
	if err != nil {
		return nil, err
	}
	m.sessions[id] = s
	return s, nil
}

// Peek returns the live session for a customization, or nil.
func (m *Manager) Peek(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Close flushes and removes a customization's session, if one is live.
func (m *Manager) Close(ctx context.Context, id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close(ctx)
	}
}

// CloseAll flushes every live session. Called on server shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close(ctx)
	}
}
