package events

import (
	"errors"
	"net/http"
	"strconv"

	"stagefront/internal/locations"
	"stagefront/internal/shared/utils/response"
	"stagefront/pkg/pager"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	lookup  locations.Service
}

func NewController(service Service, lookup locations.Service) *Controller {
	return &Controller{service: service, lookup: lookup}
}

// GetEvents returns a page of the cached catalog with venue fields resolved.
func (c *Controller) GetEvents(ctx *gin.Context) {
	items, err := c.service.List(ctx.Request.Context())
	if err != nil {
		response.RespondUpstreamError(ctx, "Failed to load events", err)
		return
	}

	// Warm the location index so display fields resolve; a failure here
	// degrades to placeholders rather than blocking the catalog.
	_, _ = c.lookup.Locations(ctx.Request.Context())

	page := queryInt(ctx, "page", 1)
	pageSize := queryInt(ctx, "page_size", 10)

	// Register the list before jumping pages: a fresh pager treats the
	// first Slice as a new identity and would reset the page to 1.
	p := pager.New[Event](pageSize)
	p.Slice(items)
	p.SetPage(page)
	visible := p.Slice(items)

	decorated := make([]EventResponse, 0, len(visible))
	for _, event := range visible {
		ref := event.LocationRef()
		decorated = append(decorated, EventResponse{
			Event:           event,
			LocationName:    c.lookup.DisplayName(ref),
			LocationAddress: c.lookup.Address(ref),
		})
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Events retrieved successfully", PaginatedEvents{
		Items:      decorated,
		Page:       p.Page(),
		PageSize:   p.PageSize(),
		TotalItems: len(items),
		TotalPages: p.TotalPages(len(items)),
	}, nil)
}

// GetEvent returns one event from the cached catalog.
func (c *Controller) GetEvent(ctx *gin.Context) {
	id := ctx.Param("eventId")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Event ID is required", nil, "missing event ID")
		return
	}

	event, err := c.service.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Event not found", nil, err.Error())
			return
		}
		response.RespondUpstreamError(ctx, "Failed to load event", err)
		return
	}

	ref := event.LocationRef()
	response.RespondJSON(ctx, "success", http.StatusOK, "Event retrieved successfully", EventResponse{
		Event:           *event,
		LocationName:    c.lookup.DisplayName(ref),
		LocationAddress: c.lookup.Address(ref),
	}, nil)
}

// ReloadEvents invalidates the cached catalog and refetches it.
func (c *Controller) ReloadEvents(ctx *gin.Context) {
	if err := c.service.Reload(ctx.Request.Context()); err != nil {
		response.RespondUpstreamError(ctx, "Failed to reload events", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Events reloaded", nil, nil)
}

func queryInt(ctx *gin.Context, key string, fallback int) int {
	if raw := ctx.Query(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			return value
		}
	}
	return fallback
}
