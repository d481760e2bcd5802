package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mediastore/mediastore-cli/internal/events"
	"github.com/mediastore/mediastore-cli/internal/logging"
	"github.com/mediastore/mediastore-cli/internal/models"
)

// ErrSuperseded is returned by LoadAll when a newer load was started before
// this one finished. Its response is discarded.
var ErrSuperseded = errors.New("catalog load superseded by a newer request")

// Source fetches the full catalog. *api.Client implements it.
type Source interface {
	ListFiles(ctx context.Context) ([]models.FileRecord, error)
}

// LoadError wraps a failed catalog fetch. The cache is empty when it is returned.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load catalog: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store owns the catalog cache, its counts and the active filter state.
// It is safe for concurrent use.
type Store struct {
	source Source
	opts   Options
	bus    *events.EventBus
	logger *logging.Logger

	seq atomic.Uint64 // latest issued load token

	mu      sync.RWMutex
	records []models.FileRecord
	counts  models.CountTable
	state   models.FilterState
	query   string
}

// NewStore creates an empty store. bus and logger may be nil.
func NewStore(source Source, opts Options, bus *events.EventBus, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{
		source:  source,
		opts:    opts,
		bus:     bus,
		logger:  logger,
		records: []models.FileRecord{},
		counts:  CountByCategory(nil, opts),
		state:   models.DefaultFilterState(),
	}
}

// LoadAll fetches the catalog and replaces the cache and counts in one step.
//
// On failure the cache is cleared to empty, counts are recomputed and a
// *LoadError is returned. Only the most recently started load may touch the
// cache; an older one returns ErrSuperseded whatever its outcome.
func (s *Store) LoadAll(ctx context.Context) ([]models.FileRecord, error) {
	token := s.seq.Add(1)
	start := time.Now()

	fetched, err := s.source.ListFiles(ctx)

	s.mu.Lock()
	if token != s.seq.Load() {
		s.mu.Unlock()
		s.logger.Debug().Uint64("token", token).Msg("Discarding superseded catalog response")
		return nil, ErrSuperseded
	}

	if err != nil {
		s.records = []models.FileRecord{}
		s.counts = CountByCategory(nil, s.opts)
		s.mu.Unlock()

		loadErr := &LoadError{Err: err}
		s.logger.Warn().Err(err).Msg("Catalog load failed, cache cleared")
		if s.bus != nil {
			s.bus.PublishCatalog(0, time.Since(start), loadErr)
		}
		return nil, loadErr
	}

	records := make([]models.FileRecord, len(fetched))
	copy(records, fetched)
	s.records = records
	s.counts = CountByCategory(records, s.opts)
	s.mu.Unlock()

	s.logger.Debug().Int("records", len(records)).Dur("elapsed", time.Since(start)).Msg("Catalog loaded")
	if s.bus != nil {
		s.bus.PublishCatalog(len(records), time.Since(start), nil)
	}
	return cloneRecords(records), nil
}

// Records returns a copy of the cached catalog.
func (s *Store) Records() []models.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// Counts returns a copy of the current count table.
func (s *Store) Counts() models.CountTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts.Clone()
}

// State returns the active filter state.
func (s *Store) State() models.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Query returns the active search query, or "" when no search is active.
func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Options returns the options the store filters with.
func (s *Store) Options() Options {
	return s.opts
}

// View recomputes the current view from the cache, the filter state and the
// active search.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *Store) viewLocked() View {
	if s.query != "" {
		return Search(s.records, s.query, s.state, s.opts)
	}
	return ApplyFilters(s.records, s.state, s.opts)
}

// ApplyFilters makes state the active filter, clears any search and returns
// the resulting view.
func (s *Store) ApplyFilters(state models.FilterState) View {
	return s.update(func(cur models.FilterState) models.FilterState {
		return state
	})
}

// SetType changes only the type filter.
func (s *Store) SetType(fileType string) View {
	return s.update(func(cur models.FilterState) models.FilterState {
		cur.Type = fileType
		return cur
	})
}

// SetCategory changes only the category filter.
func (s *Store) SetCategory(category string) View {
	return s.update(func(cur models.FilterState) models.FilterState {
		cur.Category = category
		return cur
	})
}

// SetExtension changes only the extension filter.
func (s *Store) SetExtension(extension string) View {
	return s.update(func(cur models.FilterState) models.FilterState {
		cur.Extension = extension
		return cur
	})
}

// SelectCategory picks a category and extension together and resets the type
// filter, the way a sidebar entry does.
func (s *Store) SelectCategory(category, extension string) View {
	return s.update(func(cur models.FilterState) models.FilterState {
		return models.FilterState{Type: models.FilterAll, Category: category, Extension: extension}
	})
}

// ResetFilters returns to the all/all/all view.
func (s *Store) ResetFilters() View {
	return s.update(func(models.FilterState) models.FilterState {
		return models.DefaultFilterState()
	})
}

func (s *Store) update(fn func(models.FilterState) models.FilterState) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state).Normalize()
	s.query = ""
	return s.viewLocked()
}

// Search runs query against the cache. A query below the minimum length
// clears the search and returns the filtered view. The backend is never
// contacted.
func (s *Store) Search(query string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := activeQuery(query, s.opts); ok {
		s.query = q
	} else {
		s.query = ""
	}
	return s.viewLocked()
}

func cloneRecords(records []models.FileRecord) []models.FileRecord {
	out := make([]models.FileRecord, len(records))
	copy(out, records)
	return out
}
