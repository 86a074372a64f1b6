package events

import (
	"context"
	"errors"
	"net/http"

	"stagefront/internal/cache"
	"stagefront/internal/upstream"
)

const cacheKey = "events:catalog"

// ErrNotFound is returned when an event id is absent from the catalog.
var ErrNotFound = errors.New("event not found")

type Service interface {
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Reload(ctx context.Context) error
	Loading() bool
}

type service struct {
	store  *cache.Store[Event]
	client upstream.Transport
}

func NewService(store *cache.Store[Event], client upstream.Transport) Service {
	return &service{store: store, client: client}
}

// List returns the cached event catalog, fetching it on first access.
func (s *service) List(ctx context.Context) ([]Event, error) {
	return s.store.GetOrFetch(ctx, cacheKey, s.fetch)
}

// GetByID resolves one event from the cached catalog.
func (s *service) GetByID(ctx context.Context, id string) (*Event, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			event := items[i]
			return &event, nil
		}
	}
	return nil, ErrNotFound
}

// Reload invalidates the catalog and fetches it again.
func (s *service) Reload(ctx context.Context) error {
	s.store.Invalidate(cacheKey)
	_, err := s.List(ctx)
	return err
}

func (s *service) Loading() bool {
	return s.store.Snapshot(cacheKey).Status == cache.StatusLoading
}

func (s *service) fetch(ctx context.Context) ([]byte, error) {
	return s.client.Request(ctx, http.MethodGet, "/events", nil, nil)
}
