package routes

import (
	"loadpulse/internal/handlers"
	"loadpulse/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupLoadRoutes sets up routes for load and location functionality
func SetupLoadRoutes(r *gin.RouterGroup, loadHandler *handlers.LoadHandler, locationHandler *handlers.LocationHandler, jwtSecret string) {
	locations := r.Group("/locations")
	locations.Use(middleware.AuthRequired(jwtSecret))
	{
		locations.POST("/", middleware.ShipperRequired(), locationHandler.CreateLocation)
		locations.GET("/:id", locationHandler.GetLocation)
	}

	loads := r.Group("/loads")
	loads.Use(middleware.AuthRequired(jwtSecret))
	{
		// Shipper-side posting
		loads.POST("/", middleware.ShipperRequired(), loadHandler.CreateLoad)
		loads.GET("/:id", loadHandler.GetLoad)

		// Carrier-side lifecycle
		loads.POST("/:id/accept", middleware.CarrierRequired(), loadHandler.AcceptLoad)
		loads.POST("/:id/reject", middleware.CarrierRequired(), loadHandler.RejectLoad)
	}
}
