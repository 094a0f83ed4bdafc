package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fleetops/internal/archive"
	"fleetops/internal/bus"
	"fleetops/internal/config"
	"fleetops/internal/controllers"
	"fleetops/internal/live"
	"fleetops/internal/logger"
	"fleetops/internal/middleware"
	"fleetops/internal/notify"
	"fleetops/internal/reconciler"
	"fleetops/internal/remote"
	"fleetops/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Wire the in-process collaborators
	changeBus := bus.New()
	notifier := notify.New(config.DB, changeBus)
	archiver := archive.New(config.DB)
	mirror := remote.New(config.GetEnv("REMOTE_API_URL", ""))
	liveCache := live.New(config.GetEnv("LIVE_REDIS_ADDR", ""), config.GetEnv("LIVE_REDIS_PASSWORD", ""))

	controllers.Init(changeBus, notifier, mirror, liveCache)
	controllers.StartRelayForwarding()

	// Background trip lifecycle reconciler
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reconciler.New(config.DB, notifier, archiver, changeBus).Run(ctx)

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + config.GetEnv("PORT", "8080")
	log.Println("🚀 Server running at :" + config.GetEnv("PORT", "8080"))
	log.Fatal(http.ListenAndServe(addr, handler))
}
