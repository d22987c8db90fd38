package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wxcharts/chartfeed/internal/config"
	"github.com/wxcharts/chartfeed/internal/feed"
	"github.com/wxcharts/chartfeed/internal/schedule"
	"github.com/wxcharts/chartfeed/internal/server"
)

// Command chartfeed serves display-ready chart windows from a remote
// aggregation API.
//
// The service supports:
//   - Interactive pan/zoom backends (debounced section loading)
//   - Per-trace segment caching with power-of-two resolution selection
//   - Boundary interpolation for seamless window edges
//   - Cache prewarming for the default view
//   - Prometheus metrics
//
// Usage:
//
//	chartfeed [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := logrus.New()
	if appConfig.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(appConfig.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"port":   appConfig.Server.Port,
		"traces": len(appConfig.Traces),
	}).Info("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One fetcher per configured trace
	feeds := make([]*feed.Fetcher, 0, len(appConfig.Traces))
	for _, trace := range appConfig.Traces {
		f, err := feed.New(trace.Name, trace.Params(), feed.Options{
			RateLimit:      appConfig.Upstream.RateLimit,
			RateLimitBurst: appConfig.Upstream.RateLimitBurst,
		}, logger)
		if err != nil {
			logger.Fatalf("Failed to create trace %s: %v", trace.Name, err)
		}
		feeds = append(feeds, f)
	}

	svc := server.NewWindowService(feeds, logger)
	svc.Health().SetReady("server", true)

	serverConfig := server.DefaultServerConfig()
	serverConfig.CacheSize = appConfig.Upstream.CacheSize
	serverConfig.RateLimit = appConfig.Upstream.RateLimit
	serverConfig.RateLimitBurst = appConfig.Upstream.RateLimitBurst
	handler, err := server.SetupServer(svc, serverConfig, logger)
	if err != nil {
		logger.Fatalf("Failed to setup server: %v", err)
	}

	errChan := make(chan error, 1)

	if appConfig.Prewarm.Enabled {
		prewarmer := schedule.NewPrewarmer(
			ctx,
			feeds,
			time.Duration(appConfig.Prewarm.WindowHours)*time.Hour,
			logger,
		)
		if err := prewarmer.Start(); err != nil {
			errChan <- fmt.Errorf("prewarmer error: %w", err)
		}
		defer prewarmer.Stop()
		svc.Health().SetReady("prewarmer", true)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port),
		Handler: handler,
	}

	go handleShutdown(ctx, srv, logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	if err := <-errChan; err != nil {
		logger.Fatalf("Service error: %v", err)
	}
}

// Handle graceful shutdown
func handleShutdown(ctx context.Context, srv *http.Server, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Println("Context canceled, initiating shutdown")
	case sig := <-sigChan:
		logger.Printf("Received signal %v, initiating shutdown", sig)
	}

	logger.Println("Gracefully stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}
	logger.Println("Server stopped")
	os.Exit(0)
}
