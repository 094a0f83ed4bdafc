package routes

import (
	"fleetops/internal/controllers"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	drivers := r.Group("/api/drivers")
	{
		drivers.GET("", controllers.ListDrivers)
		drivers.GET("/:id", controllers.GetDriver)
		drivers.POST("", controllers.CreateDriver)
		drivers.PUT("/:id", controllers.UpdateDriver)
		drivers.DELETE("/:id", controllers.DeleteDriver)
	}
}
