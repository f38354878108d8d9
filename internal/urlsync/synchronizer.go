// Package urlsync keeps a session's filter criteria and its navigation
// location in step. The location seeds the criteria once on initial load;
// afterwards criteria changes are written back to the location after a
// quiet period.
package urlsync

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/search"
)

// DefaultPath is the location path outbound updates are written to.
const DefaultPath = "/search"

// Mode guards the outbound path against writing back an inbound update.
type Mode int

const (
	ModeIdle Mode = iota
	ModeApplyingInbound
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeApplyingInbound:
		return "applying_inbound"
	default:
		return "unknown"
	}
}

// Navigator replaces the current navigation entry.
type Navigator interface {
	Replace(location string)
}

// FilterState is the part of the filter state manager the synchronizer uses.
type FilterState interface {
	UpdateFilters(patch domain.FilterPatch) search.Snapshot
	Criteria() domain.FilterCriteria
	OnCriteriaChange(fn search.Listener)
}

// Config controls outbound behavior.
type Config struct {
	Path     string
	Debounce time.Duration
	Clock    Clock
}

// Synchronizer is the bidirectional mapping between filter state and location.
type Synchronizer struct {
	state     FilterState
	nav       Navigator
	path      string
	logger    *slog.Logger
	debouncer *Debouncer

	mu          sync.Mutex
	mode        Mode
	initialized bool
	suppressed  int
	updates     int
}

// New creates a synchronizer and subscribes it to criteria changes of state.
func New(state FilterState, nav Navigator, cfg Config, logger *slog.Logger) *Synchronizer {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}

	s := &Synchronizer{
		state:  state,
		nav:    nav,
		path:   cfg.Path,
		logger: logger,
	}
	s.debouncer = NewDebouncer(cfg.Debounce, cfg.Clock, s.writeOutbound)
	state.OnCriteriaChange(s.criteriaChanged)
	return s
}

// Inbound parses rawQuery and applies the recognized filters. It takes effect
// at most once per synchronizer; later calls return false. Outbound triggers
// raised while the patch is applied are suppressed.
func (s *Synchronizer) Inbound(ctx context.Context, rawQuery string) bool {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return false
	}
	s.initialized = true

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// ParseQuery keeps every pair it could parse.
		s.logger.DebugContext(ctx, "ignoring malformed query parameters",
			slog.String("error", err.Error()),
		)
	}

	patch, ok := Decode(values)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.mode = ModeApplyingInbound
	s.mu.Unlock()

	// The state notifies synchronously, so every trigger caused by this
	// update arrives before the mode returns to idle.
	s.state.UpdateFilters(patch)

	s.mu.Lock()
	s.mode = ModeIdle
	s.mu.Unlock()

	metrics.URLSyncEvents.WithLabelValues(metrics.URLSyncInbound).Inc()
	s.logger.DebugContext(ctx, "applied filters from location", slog.String("query", rawQuery))
	return true
}

// EnsureInitialized marks the initial load as done without an inbound parse,
// so later criteria changes are written out.
func (s *Synchronizer) EnsureInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

// Flush writes a pending outbound update immediately.
func (s *Synchronizer) Flush() bool {
	return s.debouncer.Flush()
}

// Close cancels a pending outbound update and stops further ones.
func (s *Synchronizer) Close() {
	if s.debouncer.Close() {
		metrics.URLSyncEvents.WithLabelValues(metrics.URLSyncCanceled).Inc()
	}
}

// Mode returns the current guard state.
func (s *Synchronizer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Pending reports whether an outbound update is scheduled.
func (s *Synchronizer) Pending() bool {
	return s.debouncer.Pending()
}

// Stats returns the number of suppressed triggers and written updates.
func (s *Synchronizer) Stats() (suppressed, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed, s.updates
}

func (s *Synchronizer) criteriaChanged(domain.FilterCriteria) {
	s.mu.Lock()
	switch {
	case !s.initialized:
		s.mu.Unlock()
		return
	case s.mode == ModeApplyingInbound:
		s.suppressed++
		s.mu.Unlock()
		metrics.URLSyncEvents.WithLabelValues(metrics.URLSyncSuppressed).Inc()
		return
	}
	s.mu.Unlock()

	s.debouncer.Trigger()
}

func (s *Synchronizer) writeOutbound() {
	location := BuildLocation(s.path, s.state.Criteria())
	s.nav.Replace(location)

	s.mu.Lock()
	s.updates++
	s.mu.Unlock()

	metrics.URLSyncEvents.WithLabelValues(metrics.URLSyncReplaced).Inc()
	s.logger.Debug("replaced location", slog.String("location", location))
}

// Location is an in-memory navigation entry. Replace overwrites it in place,
// so the entry count never grows.
type Location struct {
	mu       sync.RWMutex
	current  string
	replaces int
}

// NewLocation creates a location at path.
func NewLocation(path string) *Location {
	return &Location{current: path}
}

// Replace overwrites the current entry.
func (l *Location) Replace(location string) {
	l.mu.Lock()
	l.current = location
	l.replaces++
	l.mu.Unlock()
}

// Current returns the current entry.
func (l *Location) Current() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Replaces returns how many times the entry was replaced.
func (l *Location) Replaces() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.replaces
}
