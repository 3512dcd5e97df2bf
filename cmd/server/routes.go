// Package main provides the relay server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linerelay/internal/container"
	"linerelay/internal/hosting"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, c *container.Container) {
	// Both the LINE webhook delivery and the notify endpoint run
	// through the same orchestrator; it classifies by path, method,
	// and content type.
	relayHandler := func(gc *gin.Context) {
		req := hosting.NewGinRequest(gc)
		resp := c.App.Process(gc.Request.Context(), req)
		req.WriteResponse(resp)
	}
	router.POST("/", relayHandler)
	router.POST("/notify", relayHandler)

	// Health check endpoint
	// Liveness Probe - checks if the application is alive (minimal check)
	healthHandler := func(gc *gin.Context) {
		gc.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Prometheus metrics endpoint, behind Basic Auth when a password
	// is configured.
	metricsHandler := gin.WrapH(promhttp.HandlerFor(c.MetricsRegistry, promhttp.HandlerOpts{}))
	if c.Cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			c.Cfg.MetricsUsername: c.Cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
