package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/angeloszaimis/pathrouter/internal/metrics"
	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

const probeTimeout = 5 * time.Second

// HealthCheck GETs <upstream>/health every interval until ctx is done. Any
// status other than 200, or a transport error, marks the upstream unhealthy.
// Health transitions are logged and sent to collector, which may be nil.
func HealthCheck(
	ctx context.Context,
	u *upstream.Upstream,
	interval time.Duration,
	logger *slog.Logger,
	collector *metrics.Collector,
) {
	if interval <= 0 {
		logger.Error("Health check not started, interval must be positive",
			slog.String("upstream", u.URL().String()),
			slog.Duration("interval", interval))
		return
	}

	client := &http.Client{Timeout: probeTimeout}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Health check stopped",
				slog.String("upstream", u.URL().String()))
			return

		case <-ticker.C:
			healthy := probe(ctx, client, u.URL())

			if !u.SetHealthy(healthy) {
				continue
			}

			if healthy {
				logger.Info("Upstream is back up", slog.String("upstream", u.URL().String()))
			} else {
				logger.Warn("Upstream is down", slog.String("upstream", u.URL().String()))
			}

			collector.Emit(metrics.MetricEvent{
				Type:     metrics.EventUpstreamHealth,
				Upstream: u.URL().String(),
				Healthy:  healthy,
			})
		}
	}
}

func probe(ctx context.Context, client *http.Client, base *url.URL) bool {
	healthURL := base.ResolveReference(&url.URL{Path: "/health"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return false
	}

	res, err := client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode == http.StatusOK
}
