// Package main provides the Azure Functions custom handler entry
// point. The Functions host proxies HTTP triggers to the port named in
// FUNCTIONS_CUSTOMHANDLER_PORT with the trigger route mounted under
// /api, which is stripped before classification.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linerelay/internal/config"
	"linerelay/internal/container"
	"linerelay/internal/hosting"
	"linerelay/internal/logger"
	"linerelay/internal/sentry"
)

const routePrefix = "/api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting LINE relay Functions handler")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	}
	defer sentry.Flush(2 * time.Second)

	c, err := container.Build(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to build application")
	}
	defer func() { _ = c.Close() }()

	port := cfg.Port
	if p := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT"); p != "" {
		port = p
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		req := hosting.NewHTTPRequest(r, routePrefix)
		resp := c.App.Process(r.Context(), req)
		hosting.WriteResponse(w, resp)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("Functions handler listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}
