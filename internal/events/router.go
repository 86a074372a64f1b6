package events

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	events := rg.Group("/events")
	{
		events.GET("", controller.GetEvents)            // GET  /api/v1/events
		events.GET("/:eventId", controller.GetEvent)    // GET  /api/v1/events/:eventId
		events.POST("/reload", controller.ReloadEvents) // POST /api/v1/events/reload
	}
}
