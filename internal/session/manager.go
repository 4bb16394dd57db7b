package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"writing_coach/internal/orchestrator"
)

var ErrNotFound = errors.New("session not found")

// Manager owns the live sessions of a server process.
type Manager struct {
	runner orchestrator.Runner
	opts   []Option
	cfg    settings

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds every session it creates with runner and opts.
func NewManager(runner orchestrator.Runner, opts ...Option) *Manager {
	return &Manager{
		runner:   runner,
		opts:     opts,
		cfg:      buildSettings(opts),
		sessions: map[string]*Session{},
	}
}

func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := New(id, m.runner, m.opts...)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.cfg.metrics.SessionOpened()
	m.cfg.logger.Info("session opened", "stage", "session", "session", id)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete closes the session and forgets it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Close()
	m.cfg.metrics.SessionClosed()
	m.cfg.logger.Info("session closed", "stage", "session", "session", id)
	return nil
}

// List returns session summaries ordered by creation time.
func (m *Manager) List() []Info {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	out := make([]Info, 0, len(all))
	for _, s := range all {
		out = append(out, s.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		_ = m.Delete(id)
	}
}
