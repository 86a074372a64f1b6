// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"stagefront/internal/events"
	"stagefront/internal/locations"
	"stagefront/internal/session"
	"stagefront/internal/shared/config"
	"stagefront/internal/shared/middleware"
	"stagefront/internal/zones"
	"stagefront/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	log      *logger.Logger
	sessions session.Store

	eventService    events.Service
	locationService locations.Service
	zoneManager     *zones.Manager
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, log *logger.Logger, sessions session.Store,
	eventService events.Service, locationService locations.Service, zoneManager *zones.Manager) *Router {
	return &Router{
		config:          cfg,
		log:             log,
		sessions:        sessions,
		eventService:    eventService,
		locationService: locationService,
		zoneManager:     zoneManager,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(r.log))
	engine.Use(middleware.ResolveSession(r.sessions, r.log))

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		locations.SetupLocationRoutes(api, locations.NewController(r.locationService))
		events.SetupEventRoutes(api, events.NewController(r.eventService, r.locationService))
		zones.SetupZoneRoutes(api, zones.NewController(r.zoneManager, r.eventService, r.locationService))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.sessions.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "stagefront-gateway",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "stagefront-gateway",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
