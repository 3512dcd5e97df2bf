// Package container assembles application dependencies with a clear
// initialization order and centralized shutdown. Every host binary
// (gin server, Lambda, Functions custom handler, CLI) builds the same
// graph here and only differs in how requests reach relay.App.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"linerelay/internal/auth"
	"linerelay/internal/config"
	"linerelay/internal/dispatch"
	"linerelay/internal/imagestore"
	"linerelay/internal/logger"
	"linerelay/internal/metrics"
	"linerelay/internal/registry"
	"linerelay/internal/relay"
)

// Container holds the assembled dependency graph.
//
// Initialization order:
//  1. Metrics registry and collectors
//  2. Group registry backend (sqlite, dynamodb, or postgres)
//  3. Image storage (optional, bucket-gated)
//  4. Dispatcher (LINE Messaging API client)
//  5. Relay orchestrator
type Container struct {
	Cfg             *config.Config
	Logger          *logger.Logger
	Metrics         *metrics.Metrics
	MetricsRegistry *prometheus.Registry
	Groups          registry.Registry
	Dispatcher      *dispatch.Dispatcher
	App             *relay.App
}

// Option tweaks container assembly for hosts with different needs.
type Option func(*options)

type options struct {
	withMetrics bool
}

// WithMetrics enables the Prometheus registry and instrumentation.
// Hosts without a scrape endpoint (Lambda, Functions) leave it off.
func WithMetrics() Option {
	return func(o *options) { o.withMetrics = true }
}

// Build assembles the full dependency graph from configuration.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{Cfg: cfg, Logger: log}

	if o.withMetrics {
		c.MetricsRegistry = prometheus.NewRegistry()
		c.MetricsRegistry.MustRegister(collectors.NewGoCollector())
		c.MetricsRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		c.MetricsRegistry.MustRegister(collectors.NewBuildInfoCollector())
		c.Metrics = metrics.New(c.MetricsRegistry)
	}

	groups, err := buildRegistry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("group registry: %w", err)
	}
	c.Groups = groups
	log.WithField("backend", cfg.RegistryBackend).Info("Group registry connected")

	var storage imagestore.Storage
	if cfg.HasImageStorage() {
		s3, err := imagestore.New(ctx, imagestore.Config{
			Bucket:      cfg.BucketName,
			Region:      cfg.S3Region,
			Endpoint:    cfg.S3Endpoint,
			AccessKeyID: cfg.S3AccessKey,
			SecretKey:   cfg.S3SecretKey,
		})
		if err != nil {
			c.closeGroups()
			return nil, fmt.Errorf("image storage: %w", err)
		}
		storage = s3
		log.WithField("bucket", cfg.BucketName).Info("Image storage configured")
	} else {
		log.Info("No bucket configured, image uploads disabled")
	}

	dispatcher, err := dispatch.New(dispatch.Config{
		ChannelToken: cfg.LineChannelToken,
		Storage:      storage,
		Metrics:      c.Metrics,
		Logger:       log,
	})
	if err != nil {
		c.closeGroups()
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	c.Dispatcher = dispatcher

	verifier := auth.NewVerifier(auth.NewEnvTokenSource(cfg.AuthTokenPrefix))

	mode := relay.ParseSendMode(cfg.SendMode)
	c.App = relay.New(relay.Config{
		Verifier:   verifier,
		Registry:   groups,
		Dispatcher: dispatcher,
		SendMode:   func() relay.SendMode { return mode },
		Metrics:    c.Metrics,
		Logger:     log,
	})

	return c, nil
}

// buildRegistry selects the group registry backend from configuration.
func buildRegistry(ctx context.Context, cfg *config.Config) (registry.Registry, error) {
	switch cfg.RegistryBackend {
	case config.BackendSQLite:
		return registry.NewSQLite(cfg.SQLitePath())
	case config.BackendDynamoDB:
		return registry.NewDynamo(ctx, cfg.TableName, cfg.DynamoRegion)
	case config.BackendPostgres:
		return registry.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown registry backend %q", cfg.RegistryBackend)
	}
}

// Close shuts down held resources. Safe to call once after Build
// succeeds.
func (c *Container) Close() error {
	var errs []error
	if closer, ok := c.Groups.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("group registry: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Container) closeGroups() {
	if closer, ok := c.Groups.(io.Closer); ok {
		_ = closer.Close()
	}
}
