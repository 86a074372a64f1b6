package locations

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"stagefront/internal/cache"
	"stagefront/internal/upstream"
)

const cacheKey = "locations:all"

// UnknownPlaceholder is returned by lookups for unresolved references.
// Lookups never fail; an unknown reference renders as this sentinel.
const UnknownPlaceholder = "Unknown location"

// HookState is the uniform loading/error shape dependent screens render
// against.
type HookState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

type Service interface {
	Locations(ctx context.Context) ([]Location, error)
	Reload(ctx context.Context) error
	State() HookState

	// Pure lookups. They accept an embedded record or a bare id and
	// never fail; unresolved references yield the placeholder.
	DisplayName(ref Ref) string
	Address(ref Ref) string
	Capacity(ref Ref) int
}

type service struct {
	store  *cache.Store[Location]
	client upstream.Transport

	// stuckLoadBound force-clears the hook's loading flag if the fetch
	// exceeds it. The cache entry itself is left untouched.
	stuckLoadBound time.Duration

	mu        sync.RWMutex
	index     map[string]indexedLocation
	indexedAt time.Time
	// loadStarted marks when the current fetch began; reset every time a
	// fetch starts, including retries after a failed load.
	loadStarted time.Time
}

type indexedLocation struct {
	location Location
	address  string
}

func NewService(store *cache.Store[Location], client upstream.Transport, stuckLoadBound time.Duration) Service {
	return &service{
		store:          store,
		client:         client,
		stuckLoadBound: stuckLoadBound,
		index:          make(map[string]indexedLocation),
	}
}

// Locations returns the cached location collection, fetching it on first
// access. Every successful load rebuilds the id index.
func (s *service) Locations(ctx context.Context) ([]Location, error) {
	// An idle or errored entry means this call starts a fresh fetch, so
	// the stuck-load clock restarts with it.
	if snap := s.store.Snapshot(cacheKey); snap.Status != cache.StatusReady && snap.Status != cache.StatusLoading {
		s.mu.Lock()
		s.loadStarted = time.Now()
		s.mu.Unlock()
	}

	items, err := s.store.GetOrFetch(ctx, cacheKey, s.fetch)
	if err != nil {
		return nil, err
	}
	s.rebuildIndex(items)
	return items, nil
}

// Reload invalidates the cached collection and fetches it again.
func (s *service) Reload(ctx context.Context) error {
	s.store.Invalidate(cacheKey)
	_, err := s.Locations(ctx)
	return err
}

// State reports the hook's loading/error view of the cache entry. A fetch
// stuck past the configured bound reports not-loading so a dependent screen
// is never wedged on a skeleton; the cache entry keeps its own state.
func (s *service) State() HookState {
	snap := s.store.Snapshot(cacheKey)

	loading := snap.Status == cache.StatusLoading
	if loading && s.stuckLoadBound > 0 {
		s.mu.RLock()
		started := s.loadStarted
		s.mu.RUnlock()
		if !started.IsZero() && time.Since(started) > s.stuckLoadBound {
			loading = false
		}
	}

	state := HookState{Loading: loading}
	if snap.Err != nil {
		state.Error = snap.Err.Error()
	}
	return state
}

func (s *service) DisplayName(ref Ref) string {
	if ref.Embedded != nil && ref.Embedded.Name != "" {
		return ref.Embedded.Name
	}
	if entry, ok := s.lookup(ref.ID); ok {
		return entry.location.Name
	}
	return UnknownPlaceholder
}

func (s *service) Address(ref Ref) string {
	if ref.Embedded != nil {
		return formatAddress(*ref.Embedded)
	}
	if entry, ok := s.lookup(ref.ID); ok {
		return entry.address
	}
	return UnknownPlaceholder
}

func (s *service) Capacity(ref Ref) int {
	if ref.Embedded != nil && ref.Embedded.Capacity > 0 {
		return ref.Embedded.Capacity
	}
	if entry, ok := s.lookup(ref.ID); ok {
		return entry.location.Capacity
	}
	return 0
}

func (s *service) lookup(id string) (indexedLocation, bool) {
	if id == "" {
		return indexedLocation{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.index[id]
	return entry, ok
}

func (s *service) fetch(ctx context.Context) ([]byte, error) {
	return s.client.Request(ctx, http.MethodGet, "/locations", nil, nil)
}

// rebuildIndex refreshes the id index when the cache entry has been
// reloaded since the last build.
func (s *service) rebuildIndex(items []Location) {
	snap := s.store.Snapshot(cacheKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !snap.LoadedAt.After(s.indexedAt) {
		return
	}

	index := make(map[string]indexedLocation, len(items))
	for _, loc := range items {
		index[loc.ID] = indexedLocation{
			location: loc,
			address:  formatAddress(loc),
		}
	}
	s.index = index
	s.indexedAt = snap.LoadedAt
}

func formatAddress(loc Location) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{loc.AddressLine, loc.City, loc.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return UnknownPlaceholder
	}
	return strings.Join(parts, ", ")
}
