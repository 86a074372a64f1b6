package locations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stagefront/internal/cache"
	"stagefront/internal/upstream"
	"stagefront/pkg/logger"
)

type fakeTransport struct {
	mu       sync.Mutex
	fetches  int
	response []byte
	err      error
	block    chan struct{}
}

func (f *fakeTransport) Request(ctx context.Context, method, path string, body interface{}, opts *upstream.Options) ([]byte, error) {
	f.mu.Lock()
	f.fetches++
	block := f.block
	response, err := f.response, f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return response, err
}

const locationsPayload = `{"data":[
	{"id":"loc1","name":"Grand Hall","address_line":"1 Main St","city":"Lisbon","country":"PT","capacity":1000},
	{"id":"loc2","name":"Arena","city":"Porto","capacity":15000}
]}`

func newTestService(t *testing.T, transport *fakeTransport, bound time.Duration) Service {
	t.Helper()
	store := cache.NewStore[Location](logger.GetDefault())
	return NewService(store, transport, bound)
}

func TestLookups_ResolveFromIndex(t *testing.T) {
	transport := &fakeTransport{response: []byte(locationsPayload)}
	svc := newTestService(t, transport, time.Second)

	if _, err := svc.Locations(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := svc.DisplayName(Ref{ID: "loc1"}); got != "Grand Hall" {
		t.Fatalf("display name: %q", got)
	}
	if got := svc.Address(Ref{ID: "loc1"}); got != "1 Main St, Lisbon, PT" {
		t.Fatalf("address: %q", got)
	}
	if got := svc.Address(Ref{ID: "loc2"}); got != "Porto" {
		t.Fatalf("partial address should skip empty parts: %q", got)
	}
	if got := svc.Capacity(Ref{ID: "loc2"}); got != 15000 {
		t.Fatalf("capacity: %d", got)
	}
}

func TestLookups_PreferEmbeddedRecord(t *testing.T) {
	transport := &fakeTransport{response: []byte(locationsPayload)}
	svc := newTestService(t, transport, time.Second)

	embedded := &Location{ID: "loc1", Name: "Override Hall", City: "Madrid", Capacity: 42}
	ref := Ref{ID: "loc1", Embedded: embedded}

	if got := svc.DisplayName(ref); got != "Override Hall" {
		t.Fatalf("embedded name ignored: %q", got)
	}
	if got := svc.Address(ref); got != "Madrid" {
		t.Fatalf("embedded address ignored: %q", got)
	}
	if got := svc.Capacity(ref); got != 42 {
		t.Fatalf("embedded capacity ignored: %d", got)
	}
}

func TestLookups_NeverFail(t *testing.T) {
	transport := &fakeTransport{response: []byte(locationsPayload)}
	svc := newTestService(t, transport, time.Second)

	// No load has happened; lookups still answer with the placeholder.
	if got := svc.DisplayName(Ref{ID: "ghost"}); got != UnknownPlaceholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if got := svc.Address(Ref{}); got != UnknownPlaceholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if got := svc.Capacity(Ref{ID: "ghost"}); got != 0 {
		t.Fatalf("expected zero capacity, got %d", got)
	}
}

func TestLocations_CachedAcrossCalls(t *testing.T) {
	transport := &fakeTransport{response: []byte(locationsPayload)}
	svc := newTestService(t, transport, time.Second)

	for i := 0; i < 3; i++ {
		if _, err := svc.Locations(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if transport.fetches != 1 {
		t.Fatalf("expected one fetch, got %d", transport.fetches)
	}

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if transport.fetches != 2 {
		t.Fatalf("expected reload to refetch, got %d fetches", transport.fetches)
	}
}

func TestState_ReportsFetchError(t *testing.T) {
	transport := &fakeTransport{err: errors.New("boom")}
	svc := newTestService(t, transport, time.Second)

	if _, err := svc.Locations(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	state := svc.State()
	if state.Loading {
		t.Fatal("failed load must not report loading")
	}
	if state.Error == "" {
		t.Fatal("expected error in hook state")
	}
}

func TestState_StuckLoadGuard(t *testing.T) {
	block := make(chan struct{})
	transport := &fakeTransport{response: []byte(locationsPayload), block: block}
	svc := newTestService(t, transport, 50*time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Locations(context.Background())
	}()

	// Give the fetch time to start, then outlast the bound.
	time.Sleep(20 * time.Millisecond)
	if state := svc.State(); !state.Loading {
		t.Fatal("fetch within bound should report loading")
	}
	time.Sleep(60 * time.Millisecond)
	if state := svc.State(); state.Loading {
		t.Fatal("fetch past the bound must stop reporting loading")
	}

	close(block)
	<-done

	// The cache itself was left alone and completed normally.
	if got := svc.DisplayName(Ref{ID: "loc1"}); got != "Grand Hall" {
		t.Fatalf("load after stuck guard failed: %q", got)
	}
}

func TestState_LoadingResetsOnRetry(t *testing.T) {
	transport := &fakeTransport{err: errors.New("boom")}
	svc := newTestService(t, transport, 50*time.Millisecond)

	if _, err := svc.Locations(context.Background()); err == nil {
		t.Fatal("expected the first load to fail")
	}

	// Outlast the bound, then retry with a fetch that blocks. The retry
	// starts its own clock; the stale first attempt must not count.
	time.Sleep(60 * time.Millisecond)
	block := make(chan struct{})
	transport.mu.Lock()
	transport.err = nil
	transport.response = []byte(locationsPayload)
	transport.block = block
	transport.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Locations(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	if state := svc.State(); !state.Loading {
		t.Fatal("retry fetch within its own bound must report loading")
	}

	close(block)
	<-done
}
