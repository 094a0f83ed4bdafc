package routes

import (
	"fleetops/internal/controllers"

	"github.com/gin-gonic/gin"
)

func TruckRoutes(r *gin.Engine) {
	trucks := r.Group("/api/trucks")
	{
		trucks.GET("", controllers.ListTrucks)
		trucks.GET("/:id", controllers.GetTruck)
		trucks.POST("", controllers.CreateTruck)
		trucks.PUT("/:id", controllers.UpdateTruck)
		trucks.DELETE("/:id", controllers.DeleteTruck)
		trucks.POST("/:id/assign", controllers.AssignDriver)
		trucks.POST("/:id/unassign", controllers.UnassignDriver)
	}
}
