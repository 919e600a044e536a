package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angeloszaimis/pathrouter/config"
	"github.com/angeloszaimis/pathrouter/internal/circuitbreaker"
	"github.com/angeloszaimis/pathrouter/internal/handler"
	"github.com/angeloszaimis/pathrouter/internal/healthcheck"
	"github.com/angeloszaimis/pathrouter/internal/metrics"
	"github.com/angeloszaimis/pathrouter/internal/tree"
)

type app struct {
	tree      *tree.Tree
	collector *metrics.Collector
	handler   http.Handler
}

func (a *app) Close() error {
	return a.tree.Close()
}

// setupRouter builds the router tree from cfg and starts the services it
// runs on. The collector and health checks stop when ctx is done.
func setupRouter(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	interval, err := time.ParseDuration(cfg.HealthCheck.Interval)
	if err != nil {
		return nil, fmt.Errorf("health check interval: %w", err)
	}

	breakerTimeout, err := time.ParseDuration(cfg.CircuitBreaker.Timeout)
	if err != nil {
		return nil, fmt.Errorf("circuit breaker timeout: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exporter := metrics.NewExporter(registry)

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log, exporter)

	t, err := tree.Build(cfg, tree.Deps{
		Logger:    log,
		Collector: collector,
		Exporter:  exporter,
		Breakers:  circuitbreaker.NewRegistry(cfg.CircuitBreaker.Threshold, breakerTimeout),
	})
	if err != nil {
		return nil, err
	}

	collector.Start(ctx)

	for _, u := range t.Upstreams {
		go healthcheck.HealthCheck(ctx, u, interval, log, collector)
	}

	front := handler.NewRouterHandler(log, t.Root, collector)

	return &app{
		tree:      t,
		collector: collector,
		handler: handler.Wrap(front, log, handler.WrapOptions{
			Environment:       cfg.Server.Environment,
			TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		}),
	}, nil
}
