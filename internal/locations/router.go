package locations

import (
	"github.com/gin-gonic/gin"
)

func SetupLocationRoutes(rg *gin.RouterGroup, controller *Controller) {
	locations := rg.Group("/locations")
	{
		locations.GET("", controller.GetLocations)                // GET  /api/v1/locations
		locations.GET("/resolve/:id", controller.ResolveLocation) // GET  /api/v1/locations/resolve/:id
		locations.POST("/reload", controller.ReloadLocations)     // POST /api/v1/locations/reload
	}
}
