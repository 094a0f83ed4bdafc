package routes

import (
	"fleetops/internal/controllers"

	"github.com/gin-gonic/gin"
)

func TripRoutes(r *gin.Engine) {
	trips := r.Group("/api/trips")
	{
		trips.GET("", controllers.ListTrips)
		trips.GET("/:id", controllers.GetTrip)
		trips.POST("", controllers.CreateTrip)
		trips.PUT("/:id", controllers.UpdateTrip)
		trips.DELETE("/:id", controllers.DeleteTrip)
		trips.GET("/:id/position", controllers.TripPosition)
	}

	r.POST("/api/estimate", controllers.EstimateRoute)
}
