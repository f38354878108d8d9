package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/search"
	"github.com/utafrali/storefront/internal/urlsync"
	"github.com/utafrali/storefront/internal/wishlist"
)

// DefaultIdleTimeout is how long an untouched session is kept in memory.
const DefaultIdleTimeout = 30 * time.Minute

// Config configures a Manager.
type Config struct {
	SearchPath  string
	Debounce    time.Duration
	Clock       urlsync.Clock
	IdleTimeout time.Duration
	Now         func() time.Time
}

// Manager creates sessions lazily by id and ends them explicitly or when idle.
type Manager struct {
	catalog   search.Catalog
	carts     repository.CartRepository
	wishlists repository.WishlistRepository
	publisher cart.Publisher
	cfg       Config
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. publisher may be nil.
func NewManager(
	catalog search.Catalog,
	carts repository.CartRepository,
	wishlists repository.WishlistRepository,
	publisher cart.Publisher,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	if cfg.SearchPath == "" {
		cfg.SearchPath = urlsync.DefaultPath
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Manager{
		catalog:   catalog,
		carts:     carts,
		wishlists: wishlists,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session with the given id, creating and loading it on first
// use.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	if s, ok := m.Lookup(id); ok {
		return s
	}

	// Load outside the lock so a slow store does not block other sessions.
	fresh := m.build(ctx, id)

	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		fresh.Sync.Close()
		s.touch(m.cfg.Now())
		return s
	}
	m.sessions[id] = fresh
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	fresh.touch(m.cfg.Now())
	m.logger.DebugContext(ctx, "session created", slog.String("session_id", id))
	return fresh
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.touch(m.cfg.Now())
	}
	return s, ok
}

// End closes and forgets a session. found is false for an unknown id.
func (m *Manager) End(ctx context.Context, id string) (found bool, err error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	m.logger.InfoContext(ctx, "session ended", slog.String("session_id", id))
	return true, s.close(ctx, m.logger)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle ends every session not seen within the idle timeout and returns
// how many were ended.
func (m *Manager) EvictIdle(ctx context.Context) int {
	cutoff := m.cfg.Now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var idle []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.Unlock()

	for _, id := range idle {
		_, _ = m.End(ctx, id)
	}
	return len(idle)
}

// Run evicts idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.EvictIdle(ctx); n > 0 {
				m.logger.InfoContext(ctx, "evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

// Close ends every session and returns the combined save errors.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs error
	for _, id := range ids {
		if _, err := m.End(ctx, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errs
}

func (m *Manager) build(ctx context.Context, id string) *Session {
	state := search.New(m.catalog)
	location := urlsync.NewLocation(m.cfg.SearchPath)
	syncer := urlsync.New(state, location, urlsync.Config{
		Path:     m.cfg.SearchPath,
		Debounce: m.cfg.Debounce,
		Clock:    m.cfg.Clock,
	}, m.logger.With(slog.String("session_id", id)))

	c := cart.NewStore(id, m.carts, m.publisher, m.logger)
	c.Load(ctx)
	w := wishlist.NewStore(id, m.wishlists, m.logger, m.cfg.Now)
	w.Load(ctx)

	return &Session{
		ID:       id,
		State:    state,
		Sync:     syncer,
		Location: location,
		Cart:     c,
		Wishlist: w,
	}
}
