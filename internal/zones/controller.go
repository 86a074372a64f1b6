package zones

import (
	"errors"
	"net/http"

	"stagefront/internal/events"
	"stagefront/internal/locations"
	"stagefront/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	manager *Manager
	events  events.Service
	lookup  locations.Service
}

func NewController(manager *Manager, eventService events.Service, lookup locations.Service) *Controller {
	return &Controller{
		manager: manager,
		events:  eventService,
		lookup:  lookup,
	}
}

// GetSession loads (once) and returns the event's staged zone rows with
// derived totals and the capacity flag.
func (c *Controller) GetSession(ctx *gin.Context) {
	eventID := ctx.Param("eventId")
	sess := c.manager.Session(eventID)

	if err := sess.Load(ctx.Request.Context()); err != nil {
		response.RespondUpstreamError(ctx, "Failed to load zones", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Zone session retrieved", c.sessionResponse(ctx, eventID, sess), nil)
}

// AddRow appends a blank editable row to the session.
func (c *Controller) AddRow(ctx *gin.Context) {
	sess := c.manager.Session(ctx.Param("eventId"))
	row := sess.AddRow()
	response.RespondJSON(ctx, "success", http.StatusCreated, "Zone row added", row, nil)
}

// UpdateRow applies one staged field edit.
func (c *Controller) UpdateRow(ctx *gin.Context) {
	var req UpdateFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	sess := c.manager.Session(ctx.Param("eventId"))
	if err := sess.UpdateField(ctx.Param("key"), req.Field, req.Value); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrRowNotFound) {
			status = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", status, "Failed to update zone row", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Zone row updated", nil, nil)
}

// ToggleEdit flips a row's editing flag.
func (c *Controller) ToggleEdit(ctx *gin.Context) {
	sess := c.manager.Session(ctx.Param("eventId"))
	if err := sess.ToggleEdit(ctx.Param("key")); err != nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Failed to toggle edit", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Zone row edit toggled", nil, nil)
}

// RemoveRow removes a staged row. Persisted rows also get a remote delete;
// a failed delete re-stages the row and reports the error in the result.
func (c *Controller) RemoveRow(ctx *gin.Context) {
	sess := c.manager.Session(ctx.Param("eventId"))
	result := sess.RemoveRow(ctx.Request.Context(), ctx.Param("key"))
	if !result.OK() {
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Failed to delete zone", result, result.Error)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Zone row removed", result, nil)
}

// Save validates locally, then commits the staged rows as a concurrent
// batch. Validation failures block the commit entirely; commit failures are
// reported per row.
func (c *Controller) Save(ctx *gin.Context) {
	eventID := ctx.Param("eventId")
	sess := c.manager.Session(eventID)

	if verdict := sess.Validate(); !verdict.OK {
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Zone validation failed", verdict, verdict.Message)
		return
	}

	results, err := sess.Save(ctx.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrSaveInProgress) {
			status = http.StatusConflict
		}
		response.RespondJSON(ctx, "error", status, "Failed to save zones", nil, err.Error())
		return
	}

	ok := true
	for _, result := range results {
		if !result.OK() {
			ok = false
			break
		}
	}

	payload := SaveResponse{OK: ok, Results: results}
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Some zone changes failed to save", payload, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Zones saved successfully", payload, nil)
}

func (c *Controller) sessionResponse(ctx *gin.Context, eventID string, sess *Session) SessionResponse {
	capacity := c.resolveCapacity(ctx, eventID)
	sold, quota := sess.Totals()

	return SessionResponse{
		EventID:            eventID,
		Rows:               sess.Rows(),
		Saving:             sess.Saving(),
		TotalSeatsSold:     sold,
		TotalCapacityZones: quota,
		Capacity:           capacity,
		CapacityExceeded:   sess.CapacityExceeded(capacity),
	}
}

// resolveCapacity walks event → location → capacity through the lookup
// hook. Unresolvable references degrade to 0, which disables the flag.
func (c *Controller) resolveCapacity(ctx *gin.Context, eventID string) int {
	event, err := c.events.GetByID(ctx.Request.Context(), eventID)
	if err != nil {
		return 0
	}
	_, _ = c.lookup.Locations(ctx.Request.Context())
	return c.lookup.Capacity(event.LocationRef())
}
