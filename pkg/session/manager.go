package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/errors"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// TTL is the idle lifetime of a session. Defaults to DefaultTTL.
	TTL time.Duration
	// Mode is the bounds mode of new sessions.
	Mode   bounds.Mode
	Logger *log.Logger
}

// Manager creates sessions and keeps them in sync with a Store. Sessions
// in use are cached in memory together with their loaded images. Their
// state is checked against the store on every Get, so several servers can
// share a Redis store as long as each request Gets before it edits.
type Manager struct {
	store  Store
	ttl    time.Duration
	mode   bounds.Mode
	logger *log.Logger

	mu   sync.Mutex
	live map[string]*Session
}

// NewManager creates a Manager over store, or over a MemoryStore when
// store is nil.
func NewManager(store Store, opts ManagerOptions) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Manager{
		store:  store,
		ttl:    opts.TTL,
		mode:   opts.Mode,
		logger: opts.Logger,
		live:   make(map[string]*Session),
	}
}

// Create starts a new session with a random ID and stores it.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.NewString(), m.mode, m.logger)
	if err := m.Save(ctx, s); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.live[s.id] = s
	m.mu.Unlock()
	m.logger.Debug("session created", "session", s.id)
	return s, nil
}

// Get returns the session with id, or SESSION_NOT_FOUND. The store is
// read on every call: a live session is refreshed when another instance
// saved a newer version, and dropped when the record is gone.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session %s", id)
	}
	if rec == nil {
		m.forget(id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found or expired", id)
	}

	m.mu.Lock()
	s, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		if err := s.refresh(rec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "refresh session %s", id)
		}
		return s, nil
	}

	s, err = Restore(rec, m.logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "restore session %s", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.live[id]; ok {
		return cur, nil
	}
	m.live[id] = s
	return s, nil
}

// Save extends the session's lifetime, bumps its version and writes it to
// the store.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	rec := s.stamp(m.ttl)
	if err := m.store.Set(ctx, &rec); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save session %s", s.id)
	}
	return nil
}

// Delete ends a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.forget(id)
	if err := m.store.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete session %s", id)
	}
	return nil
}

// Cleanup drops expired sessions from memory and the store.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	for id, s := range m.live {
		if s.IsExpired() {
			delete(m.live, id)
		}
	}
	m.mu.Unlock()
	return m.store.Cleanup(ctx)
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Close closes the store.
func (m *Manager) Close() error { return m.store.Close() }

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
}
