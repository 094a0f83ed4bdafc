package routes

import (
	"fleetops/internal/controllers"

	"github.com/gin-gonic/gin"
)

// FleetRoutes mounts the supporting fleet resources: destinations,
// maintenance records, schedules and driver documents.
func FleetRoutes(r *gin.Engine) {
	destinations := r.Group("/api/destinations")
	{
		destinations.GET("", controllers.ListDestinations)
		destinations.POST("", controllers.CreateDestination)
		destinations.PUT("/:id", controllers.UpdateDestination)
		destinations.DELETE("/:id", controllers.DeleteDestination)
	}

	maintenances := r.Group("/api/scheduled-maintenance")
	{
		maintenances.GET("", controllers.ListMaintenances)
		maintenances.POST("", controllers.CreateMaintenance)
		maintenances.PUT("/:id", controllers.UpdateMaintenance)
		maintenances.DELETE("/:id", controllers.DeleteMaintenance)
	}

	truckSchedules := r.Group("/api/truck-schedules")
	{
		truckSchedules.GET("", controllers.ListTruckSchedules)
		truckSchedules.POST("", controllers.CreateTruckSchedule)
		truckSchedules.PUT("/:id", controllers.UpdateTruckSchedule)
		truckSchedules.DELETE("/:id", controllers.DeleteTruckSchedule)
	}

	driverSchedules := r.Group("/api/driver-schedules")
	{
		driverSchedules.GET("", controllers.ListDriverSchedules)
		driverSchedules.POST("", controllers.CreateDriverSchedule)
		driverSchedules.PUT("/:id", controllers.UpdateDriverSchedule)
		driverSchedules.DELETE("/:id", controllers.DeleteDriverSchedule)
	}

	documents := r.Group("/api/driver-documents")
	{
		documents.GET("", controllers.ListDriverDocuments)
		documents.POST("", controllers.CreateDriverDocument)
		documents.PUT("/:id", controllers.UpdateDriverDocument)
		documents.DELETE("/:id", controllers.DeleteDriverDocument)
	}
}
