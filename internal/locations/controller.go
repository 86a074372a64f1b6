package locations

import (
	"net/http"

	"stagefront/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetLocations returns the cached location collection with hook state.
func (c *Controller) GetLocations(ctx *gin.Context) {
	items, err := c.service.Locations(ctx.Request.Context())
	state := c.service.State()
	if err != nil {
		response.RespondUpstreamError(ctx, "Failed to load locations", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Locations retrieved successfully", gin.H{
		"loading": state.Loading,
		"items":   items,
	}, nil)
}

// ResolveLocation resolves display fields for a location id.
func (c *Controller) ResolveLocation(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Location ID is required", nil, "missing location ID")
		return
	}

	// Warm the cache so a cold gateway can still resolve. Lookup itself
	// never fails; a fetch error just degrades to the placeholder.
	_, _ = c.service.Locations(ctx.Request.Context())

	ref := Ref{ID: id}
	response.RespondJSON(ctx, "success", http.StatusOK, "Location resolved", gin.H{
		"display_name": c.service.DisplayName(ref),
		"address":      c.service.Address(ref),
		"capacity":     c.service.Capacity(ref),
	}, nil)
}

// ReloadLocations invalidates the cached collection and refetches it.
func (c *Controller) ReloadLocations(ctx *gin.Context) {
	if err := c.service.Reload(ctx.Request.Context()); err != nil {
		response.RespondUpstreamError(ctx, "Failed to reload locations", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Locations reloaded", nil, nil)
}
