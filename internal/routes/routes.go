package routes

import (
	"net/http"
	"os"
	"strings"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetops/internal/middleware"
)

// publicPaths stay reachable without a token when AUTH_REQUIRED is on.
var publicPaths = map[string]bool{
	"/api/auth/login": true,
	"/healthz":        true,
	"/metrics":        true,
}

// SetupRouter assembles the gin engine with the shared middleware and all
// resource routes mounted.
func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())
	r.Use(middleware.PrometheusMiddleware())

	if os.Getenv("AUTH_REQUIRED") == "true" {
		auth := middleware.RequireAuth()
		r.Use(func(c *gin.Context) {
			path := c.FullPath()
			if publicPaths[path] || strings.HasPrefix(path, "/ws/") {
				c.Next()
				return
			}
			auth(c)
		})
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	AuthRoutes(r)
	TruckRoutes(r)
	DriverRoutes(r)
	TripRoutes(r)
	FleetRoutes(r)
	NotificationRoutes(r)
	WebSocketRoutes(r)

	return r
}
