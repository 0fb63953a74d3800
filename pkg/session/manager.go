// Package session is the concurrency-safe session store of the desk.
//
// The Manager linearizes every operation on one user's session behind a
// per-user lock while letting distinct users proceed fully in parallel.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// unlockTimeout bounds the release of a distributed lock.
const unlockTimeout = 5 * time.Second

// lockEntry holds the per-user semaphore and the reference count.
// The semaphore is a 1-slot channel: blocked senders are admitted in the
// order they arrived, and a waiter can give up when its context ends.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// UpdateFunc computes the next session from the current one.
// Returning an error leaves the stored session untouched.
type UpdateFunc func(ctx context.Context, current domain.Session) (domain.Session, error)

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Guards the locks map only
	locks map[string]*lockEntry // Active per-user locks

	locker  ports.DistributedLocker // Optional cross-replica lock
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// Every acquire must be paired with a release.
func (m *Manager) acquire(userID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		m.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, userID)
	}
}

// WithLock executes fn while holding the lock for userID.
func (m *Manager) WithLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	entry := m.acquire(userID)
	defer m.release(userID)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-entry.sem }()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, userID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Release even when the caller's ctx has ended.
			unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
			defer cancel()
			if err := unlock(unlockCtx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user_id", userID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Get returns the user's session, Idle when none is stored.
func (m *Manager) Get(ctx context.Context, userID string) (domain.Session, error) {
	var s domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		s, err = m.load(ctx, userID)
		return err
	})
	return s, err
}

// CompareAndSet replaces the session with next only if the stored session
// equals expected (revision included). It reports whether the swap happened.
func (m *Manager) CompareAndSet(ctx context.Context, userID string, expected, next domain.Session) (bool, error) {
	swapped := false
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		current, err := m.load(ctx, userID)
		if err != nil {
			return err
		}
		if !current.Equal(expected) {
			return nil
		}
		if _, err := m.write(ctx, userID, current, next); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	return swapped, err
}

// Clear resets the user's session to Idle.
func (m *Manager) Clear(ctx context.Context, userID string) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	})
}

// Update performs a read-modify-write of the user's session under its lock.
// The store is written only when fn succeeds and returns different content.
// It returns the session as stored afterwards.
func (m *Manager) Update(ctx context.Context, userID string, fn UpdateFunc) (domain.Session, error) {
	var result domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		current, err := m.load(ctx, userID)
		if err != nil {
			return err
		}
		result = current

		next, err := fn(ctx, current.Clone())
		if err != nil {
			return err
		}
		if next.SameContent(current) {
			return nil
		}

		result, err = m.write(ctx, userID, current, next)
		return err
	})
	return result, err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

func (m *Manager) load(ctx context.Context, userID string) (domain.Session, error) {
	s, err := m.store.Load(ctx, userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Idle(), nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// write persists next over current. Idle sessions are not stored.
func (m *Manager) write(ctx context.Context, userID string, current, next domain.Session) (domain.Session, error) {
	if err := next.Validate(); err != nil {
		return current, fmt.Errorf("refusing to store invalid session: %w", err)
	}

	if next.IsIdle() {
		if err := m.store.Delete(ctx, userID); err != nil {
			return current, fmt.Errorf("failed to clear session: %w", err)
		}
		return domain.Idle(), nil
	}

	next.Revision = current.Revision + 1
	if err := m.store.Save(ctx, userID, next); err != nil {
		return current, fmt.Errorf("failed to save session: %w", err)
	}
	return next, nil
}
