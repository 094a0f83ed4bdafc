package routes

import (
	"fleetops/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine) {
	ws := r.Group("/ws")
	{
		ws.GET("/relay", controllers.HandleRelayWebSocket)
	}
}
