package zones

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stagefront/internal/events"
	"stagefront/internal/locations"

	"github.com/gin-gonic/gin"
)

type fakeEventService struct {
	event *events.Event
}

func (f *fakeEventService) List(ctx context.Context) ([]events.Event, error) {
	if f.event == nil {
		return nil, nil
	}
	return []events.Event{*f.event}, nil
}

func (f *fakeEventService) GetByID(ctx context.Context, id string) (*events.Event, error) {
	if f.event != nil && f.event.ID == id {
		return f.event, nil
	}
	return nil, events.ErrNotFound
}

func (f *fakeEventService) Reload(ctx context.Context) error { return nil }
func (f *fakeEventService) Loading() bool                    { return false }

type fakeLookup struct {
	capacity int
}

func (f *fakeLookup) Locations(ctx context.Context) ([]locations.Location, error) { return nil, nil }
func (f *fakeLookup) Reload(ctx context.Context) error                            { return nil }
func (f *fakeLookup) State() locations.HookState                                  { return locations.HookState{} }
func (f *fakeLookup) DisplayName(ref locations.Ref) string                        { return "Grand Hall" }
func (f *fakeLookup) Address(ref locations.Ref) string                            { return "1 Main St" }
func (f *fakeLookup) Capacity(ref locations.Ref) int                              { return f.capacity }

func newTestEngine(t *testing.T, transport *fakeTransport) (*gin.Engine, *Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := NewManager(transport)
	eventService := &fakeEventService{event: &events.Event{ID: "e1", Name: "Gig", LocationID: "loc1"}}
	controller := NewController(manager, eventService, &fakeLookup{capacity: 1000})

	engine := gin.New()
	SetupZoneRoutes(engine.Group("/api/v1"), controller)
	return engine, manager
}

func TestGetSession_ReturnsRowsAndCapacityFlag(t *testing.T) {
	transport := newFakeTransport()
	transport.respond(http.MethodGet, "/events/e1/zones", zonesPayload)
	engine, _ := newTestEngine(t, transport)

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/events/e1/zones/session", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status %d: %s", recorder.Code, recorder.Body.String())
	}

	var envelope struct {
		Data SessionResponse `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(envelope.Data.Rows))
	}
	if envelope.Data.Capacity != 1000 {
		t.Fatalf("capacity not resolved: %d", envelope.Data.Capacity)
	}
	if !envelope.Data.CapacityExceeded {
		t.Fatal("1200 staged seats against capacity 1000 must flag")
	}
	if envelope.Data.TotalCapacityZones != 1200 {
		t.Fatalf("expected total quota 1200, got %d", envelope.Data.TotalCapacityZones)
	}
}

func TestSave_BlockedByValidationGate(t *testing.T) {
	transport := newFakeTransport()
	transport.respond(http.MethodGet, "/events/e1/zones", zonesPayload)
	engine, manager := newTestEngine(t, transport)

	sess := manager.Session("e1")
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	key := sess.Rows()[0].LocalKey
	if err := sess.UpdateField(key, "display_name", ""); err != nil {
		t.Fatalf("edit: %v", err)
	}

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/events/e1/zones/session/save", nil))

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", recorder.Code, recorder.Body.String())
	}
	// The gate must fire before any commit request goes out.
	if calls := transport.callsMatching(http.MethodPut, "/zones/"); len(calls) != 0 {
		t.Fatalf("validation failure must block updates, saw %d", len(calls))
	}
	if calls := transport.callsMatching(http.MethodPost, "/events/e1/zones"); len(calls) != 0 {
		t.Fatalf("validation failure must block creates, saw %d", len(calls))
	}
}

func TestUpdateRow_RejectsUnknownField(t *testing.T) {
	transport := newFakeTransport()
	transport.respond(http.MethodGet, "/events/e1/zones", zonesPayload)
	engine, manager := newTestEngine(t, transport)

	sess := manager.Session("e1")
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	key := sess.Rows()[0].LocalKey

	body := strings.NewReader(`{"field":"bogus","value":1}`)
	request := httptest.NewRequest(http.MethodPatch, "/api/v1/events/e1/zones/session/rows/"+key, body)
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", recorder.Code)
	}
}
