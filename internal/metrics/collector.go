package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestReceived  EventType = "request_received"
	EventRouteHandled     EventType = "route_handled"
	EventUpstreamSelected EventType = "upstream_selected"
	EventUpstreamHealth   EventType = "upstream_health"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Route      string
	Upstream   string
	Duration   time.Duration
	StatusCode int
	Healthy    bool
}

type Collector struct {
	eventCh  chan MetricEvent
	metrics  *Metrics
	exporter *Exporter
	logger   *slog.Logger
}

// NewCollector creates a collector buffering bufferSize events. exporter
// may be nil.
func NewCollector(bufferSize int, logger *slog.Logger, exporter *Exporter) *Collector {
	return &Collector{
		eventCh:  make(chan MetricEvent, bufferSize),
		metrics:  NewMetrics(),
		exporter: exporter,
		logger:   logger,
	}
}

// Emit queues event without blocking. It is safe to call on a nil Collector.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("Metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	c.exporter.observe(event)

	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests()

	case EventRouteHandled:
		c.metrics.RecordRoute(event.Route, event.Duration, event.StatusCode)

	case EventUpstreamSelected:
		c.metrics.RecordSelection(event.Upstream)

	case EventUpstreamHealth:
		c.metrics.UpdateHealthStatus(event.Upstream, event.Healthy)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
