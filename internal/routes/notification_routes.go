package routes

import (
	"fleetops/internal/controllers"

	"github.com/gin-gonic/gin"
)

func NotificationRoutes(r *gin.Engine) {
	notifications := r.Group("/api/notifications")
	{
		notifications.GET("", controllers.ListNotifications)
		notifications.POST("", controllers.CreateNotification)
		notifications.PUT("/:id", controllers.UpdateNotification)
		notifications.PUT("/:id/read", controllers.MarkNotificationRead)
		notifications.DELETE("/:id", controllers.DeleteNotification)
	}

	tripHistory := r.Group("/api/trip-history")
	{
		tripHistory.GET("", controllers.ListTripHistory)
		tripHistory.POST("", controllers.CreateTripHistory)
		tripHistory.PUT("/:id", controllers.UpdateTripHistory)
		tripHistory.DELETE("/:id", controllers.DeleteTripHistory)
	}

	driverTripHistory := r.Group("/api/driver-trip-history")
	{
		driverTripHistory.GET("", controllers.ListDriverTripHistory)
		driverTripHistory.POST("", controllers.CreateDriverTripHistory)
		driverTripHistory.PUT("/:id", controllers.UpdateDriverTripHistory)
		driverTripHistory.DELETE("/:id", controllers.DeleteDriverTripHistory)
	}
}
