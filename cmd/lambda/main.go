// Package main provides the AWS Lambda Function URL entry point. The
// dependency graph is built once per cold start and each invocation is
// adapted to the host-independent request shape.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"linerelay/internal/config"
	"linerelay/internal/container"
	"linerelay/internal/hosting"
	"linerelay/internal/logger"
	"linerelay/internal/sentry"
)

type handler struct {
	c *container.Container
}

func (h *handler) handleRequest(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	req := hosting.NewLambdaRequest(event)
	resp := h.c.App.Process(ctx, req)
	return hosting.ToLambdaResponse(resp), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting LINE relay Lambda handler")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	}

	c, err := container.Build(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to build application")
	}

	lambda.Start((&handler{c: c}).handleRequest)
}
