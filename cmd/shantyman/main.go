package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"

	"pianoworks/shantyman/internal/config"
	"pianoworks/shantyman/internal/handlers"
	"pianoworks/shantyman/internal/metrics"
	"pianoworks/shantyman/internal/websocket"
	pkgconfig "pianoworks/shantyman/pkg/config"
	"pianoworks/shantyman/pkg/logging"
	"pianoworks/shantyman/pkg/monitoring"
	"pianoworks/shantyman/pkg/server"
	"pianoworks/shantyman/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("shantyman")

	// Load environment variables
	pkgconfig.LoadEnv(logger)

	logger.WithFields(logging.Fields{
		"version": version.Version,
		"commit":  version.GetShortCommit(),
	}).Info("Starting Shantyman (multiplayer piano relay)")

	cfg := config.Load()
	if cfg.Production && (cfg.Salt1 == "" || cfg.Salt2 == "") {
		logger.Warn("Running in production without SALT1/SALT2; client identities are predictable")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("shantyman", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("shantyman", version.Version, version.GitCommit)
	hubMetrics := metrics.New(metricsCollector)

	// Relay hub
	hub := websocket.NewHub(cfg, logger, hubMetrics)

	relayHandlers := handlers.NewRelayHandlers(hub, logger)

	// Health checks
	healthChecker.AddCheck("hub", func() monitoring.CheckResult {
		clients, channels := hub.Stats()
		return monitoring.CheckResult{
			Status:  monitoring.StatusHealthy,
			Message: fmt.Sprintf("%d clients across %d channels", clients, channels),
		}
	})
	if cfg.Production {
		// Missing salts degrade rather than fail: the relay still runs, but
		// identities are derived from the address alone.
		healthChecker.AddCheck("identity_salts", monitoring.ConfigurationHealthCheck(map[string]string{
			"SALT1": cfg.Salt1,
			"SALT2": cfg.Salt2,
		}, monitoring.StatusDegraded))
	}

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "shantyman", healthChecker, metricsCollector)
	router.GET("/ws", relayHandlers.HandleWebSocket)
	router.NoRoute(relayHandlers.HandleNotFound)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		return server.Start(gctx, server.DefaultConfig("shantyman", cfg.Port), router, logger)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("Service failed")
	}
	logger.Info("Shutdown complete")
}
