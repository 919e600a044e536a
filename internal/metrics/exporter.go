package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pathrouter"

// Exporter mirrors collector events into Prometheus metrics.
type Exporter struct {
	gatherer      prometheus.Gatherer
	requests      prometheus.Counter
	routeHandled  *prometheus.CounterVec
	routeDuration *prometheus.HistogramVec
	selections    *prometheus.CounterVec
	upstreamUp    *prometheus.GaugeVec
}

// NewExporter registers the pathrouter metrics on registry.
func NewExporter(registry *prometheus.Registry) *Exporter {
	factory := promauto.With(registry)

	return &Exporter{
		gatherer: registry,
		requests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests received by the root router.",
		}),
		routeHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_handled_total",
			Help:      "Requests answered by each route's terminal behavior.",
		}, []string{"route", "status"}),
		routeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_duration_seconds",
			Help:      "Time spent in each route's terminal behavior.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		selections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_selected_total",
			Help:      "Times each upstream was picked by a proxy leaf.",
		}, []string{"upstream"}),
		upstreamUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_up",
			Help:      "1 when the upstream passed its last health check.",
		}, []string{"upstream"}),
	}
}

// Handler serves the Prometheus text exposition.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.gatherer, promhttp.HandlerOpts{})
}

func (e *Exporter) observe(event MetricEvent) {
	if e == nil {
		return
	}

	switch event.Type {
	case EventRequestReceived:
		e.requests.Inc()

	case EventRouteHandled:
		e.routeHandled.WithLabelValues(event.Route, strconv.Itoa(event.StatusCode)).Inc()
		e.routeDuration.WithLabelValues(event.Route).Observe(event.Duration.Seconds())

	case EventUpstreamSelected:
		e.selections.WithLabelValues(event.Upstream).Inc()

	case EventUpstreamHealth:
		up := 0.0
		if event.Healthy {
			up = 1
		}
		e.upstreamUp.WithLabelValues(event.Upstream).Set(up)
	}
}
