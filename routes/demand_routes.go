package routes

import (
	"loadpulse/internal/handlers"
	"loadpulse/internal/middleware"
	"loadpulse/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupDemandRoutes sets up routes for the demand pipeline
func SetupDemandRoutes(r *gin.RouterGroup, demandHandler *handlers.DemandHandler, wsHandler *websocket.Handler, jwtSecret string) {
	demand := r.Group("/demand")
	demand.Use(middleware.AuthRequired(jwtSecret))
	{
		demand.POST("/record", demandHandler.RecordDemand)
		demand.POST("/aggregate", demandHandler.TriggerAggregation)
		demand.POST("/hook", demandHandler.RunCreationHook)
		demand.GET("/aggregations", demandHandler.ListAggregations)
	}

	// Live heatmap stream; dashboards connect anonymously and join region
	// rooms after the handshake.
	r.GET("/ws/heatmap", wsHandler.HandleWebSocket)
}
