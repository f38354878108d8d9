// Package search holds a session's filter criteria, sort key and the
// results derived from them.
package search

import (
	"slices"
	"strings"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/engine"
	"github.com/utafrali/storefront/internal/metrics"
)

// MaxHistory caps the number of remembered search queries.
const MaxHistory = 10

// Catalog supplies the products the state filters.
type Catalog interface {
	All() []domain.Product
}

// Listener is called after the filter criteria change.
type Listener func(domain.FilterCriteria)

// Snapshot is a consistent view of the state. Results always reflect the
// criteria and sort key of the same snapshot.
type Snapshot struct {
	Criteria domain.FilterCriteria `json:"filters"`
	Sort     domain.SortKey        `json:"sort_by"`
	Results  []domain.Product      `json:"results"`
	History  []string              `json:"search_history"`
}

// State is the filter state manager. Every mutation re-runs the filter engine
// before it returns, so readers never observe stale results.
type State struct {
	catalog Catalog

	mu        sync.Mutex
	criteria  domain.FilterCriteria
	sort      domain.SortKey
	results   []domain.Product
	history   []string
	listeners []Listener
}

// New creates a state with default criteria and computes the initial results.
func New(catalog Catalog) *State {
	s := &State{
		catalog:  catalog,
		criteria: domain.DefaultCriteria(),
		sort:     domain.DefaultSort,
		history:  []string{},
	}
	s.recompute()
	return s
}

// OnCriteriaChange registers fn to run synchronously after every change of the
// criteria. Sort changes do not notify.
func (s *State) OnCriteriaChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// UpdateFilters merges the fields present in patch into the criteria.
func (s *State) UpdateFilters(patch domain.FilterPatch) Snapshot {
	return s.setCriteria(func(c domain.FilterCriteria) domain.FilterCriteria {
		return c.Apply(patch)
	})
}

// ClearFilters resets every criteria field to its unset value. The sort key
// and search history are kept.
func (s *State) ClearFilters() Snapshot {
	return s.setCriteria(func(domain.FilterCriteria) domain.FilterCriteria {
		return domain.DefaultCriteria()
	})
}

// UpdateSort changes the sort key. Keys outside the enumeration are rejected
// and leave the state untouched.
func (s *State) UpdateSort(key domain.SortKey) (Snapshot, error) {
	if !key.Valid() {
		return s.Snapshot(), apperrors.InvalidInput("unknown sort key " + string(key))
	}

	s.mu.Lock()
	s.sort = key
	s.recompute()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	return snap, nil
}

// Search records a non-blank query in the history, most recent first and
// without duplicates, and then sets it as the query filter.
func (s *State) Search(query string) Snapshot {
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		s.mu.Lock()
		s.history = pushHistory(s.history, trimmed)
		s.mu.Unlock()
	}
	return s.UpdateFilters(domain.FilterPatch{Query: &query})
}

// Refresh re-evaluates the results against the current catalog contents.
func (s *State) Refresh() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recompute()
	return s.snapshotLocked()
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Criteria returns a copy of the current criteria.
func (s *State) Criteria() domain.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria.Clone()
}

func (s *State) setCriteria(next func(domain.FilterCriteria) domain.FilterCriteria) Snapshot {
	s.mu.Lock()
	updated := next(s.criteria)
	changed := !updated.Equal(s.criteria)
	s.criteria = updated
	s.recompute()
	snap := s.snapshotLocked()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	// Listeners may read the state back, so they run without the lock.
	if changed {
		for _, fn := range listeners {
			fn(snap.Criteria.Clone())
		}
	}
	return snap
}

func (s *State) recompute() {
	s.results = engine.Apply(s.catalog.All(), s.criteria, s.sort)
	metrics.FilterEvaluations.Inc()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Criteria: s.criteria.Clone(),
		Sort:     s.sort,
		Results:  slices.Clone(s.results),
		History:  slices.Clone(s.history),
	}
}

func pushHistory(history []string, query string) []string {
	out := make([]string, 0, MaxHistory)
	out = append(out, query)
	for _, h := range history {
		if h != query && len(out) < MaxHistory {
			out = append(out, h)
		}
	}
	return out
}
