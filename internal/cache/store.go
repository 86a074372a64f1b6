package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stagefront/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusReady   Status = "READY"
	StatusError   Status = "ERROR"
)

// Fetcher loads the raw list payload for a key from the remote API.
type Fetcher func(ctx context.Context) ([]byte, error)

// Entry is a point-in-time snapshot of one cached collection.
type Entry[T any] struct {
	Key      string
	Items    []T
	Status   Status
	Err      error
	LoadedAt time.Time
}

type entry[T any] struct {
	items      []T
	status     Status
	err        error
	loadedAt   time.Time
	generation uint64
}

// Store is a keyed single-flight collection cache. A key is fetched at most
// once until invalidated; concurrent callers for the same key share one
// underlying request. Stores are constructed explicitly and injected, never
// package-level.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	flight  singleflight.Group
	log     *logger.Logger
}

// NewStore creates an empty cache store.
func NewStore[T any](log *logger.Logger) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		log:     log,
	}
}

// GetOrFetch returns the cached items for key, fetching them if the entry is
// not ready. N concurrent callers produce exactly one fetch. A result whose
// generation was invalidated mid-flight is returned to its callers but never
// stored.
func (s *Store[T]) GetOrFetch(ctx context.Context, key string, fetch Fetcher) ([]T, error) {
	s.mu.Lock()
	e := s.ensure(key)
	if e.status == StatusReady {
		items := cloneItems(e.items)
		s.mu.Unlock()
		return items, nil
	}
	generation := e.generation
	e.status = StatusLoading
	s.mu.Unlock()

	// The flight key includes the generation so a fetch started after an
	// invalidation never joins the stale flight it replaced.
	flightKey := fmt.Sprintf("%s@%d", key, generation)
	ch := s.flight.DoChan(flightKey, func() (interface{}, error) {
		started := time.Now()
		// Detached from the initiating caller: its cancellation must not
		// kill the flight the other callers are waiting on.
		raw, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			s.apply(key, generation, nil, err)
			return nil, err
		}
		items, err := DecodeItems[T](raw)
		if err != nil {
			s.apply(key, generation, nil, err)
			return nil, err
		}
		s.apply(key, generation, items, nil)
		s.log.LogCacheRefresh(ctx, key, len(items), time.Since(started))
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneItems(res.Val.([]T)), nil
	}
}

// apply commits a completed fetch to the entry, unless the entry was
// invalidated while the fetch was in flight.
func (s *Store[T]) apply(key string, generation uint64, items []T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.generation != generation {
		// A later invalidate superseded this fetch; discard it.
		return
	}
	if err != nil {
		e.status = StatusError
		e.err = err
		return
	}
	e.items = items
	e.status = StatusReady
	e.err = nil
	e.loadedAt = time.Now()
}

// Invalidate resets the entry for key, forcing the next GetOrFetch to hit
// the remote API. An in-flight fetch for the old generation completes
// harmlessly without being stored.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensure(key)
	e.generation++
	e.status = StatusIdle
	e.items = nil
	e.err = nil
	e.loadedAt = time.Time{}
}

// Snapshot returns a copy of the entry's current state for key.
func (s *Store[T]) Snapshot(key string) Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry[T]{Key: key, Status: StatusIdle}
	}
	return Entry[T]{
		Key:      key,
		Items:    cloneItems(e.items),
		Status:   e.status,
		Err:      e.err,
		LoadedAt: e.loadedAt,
	}
}

// Dispose discards all entries. Fetches still in flight complete without
// being stored.
func (s *Store[T]) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Entries are reset in place so per-key generations stay monotonic
	// and an in-flight fetch can never match a recreated entry.
	for _, e := range s.entries {
		e.generation++
		e.status = StatusIdle
		e.items = nil
		e.err = nil
		e.loadedAt = time.Time{}
	}
}

// cloneItems copies the cached slice so no caller can mutate shared state.
func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// ensure must be called with s.mu held.
func (s *Store[T]) ensure(key string) *entry[T] {
	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{status: StatusIdle}
		s.entries[key] = e
	}
	return e
}
