package zones

import (
	"github.com/gin-gonic/gin"
)

func SetupZoneRoutes(rg *gin.RouterGroup, controller *Controller) {
	session := rg.Group("/events/:eventId/zones/session")
	{
		session.GET("", controller.GetSession)                   // GET    /api/v1/events/:eventId/zones/session
		session.POST("/rows", controller.AddRow)                 // POST   /api/v1/events/:eventId/zones/session/rows
		session.PATCH("/rows/:key", controller.UpdateRow)        // PATCH  /api/v1/events/:eventId/zones/session/rows/:key
		session.POST("/rows/:key/toggle", controller.ToggleEdit) // POST   /api/v1/events/:eventId/zones/session/rows/:key/toggle
		session.DELETE("/rows/:key", controller.RemoveRow)       // DELETE /api/v1/events/:eventId/zones/session/rows/:key
		session.POST("/save", controller.Save)                   // POST   /api/v1/events/:eventId/zones/session/save
	}
}
