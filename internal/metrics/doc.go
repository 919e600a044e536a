// Package metrics collects what the routing tree does at runtime.
//
// Request handling emits MetricEvents on a buffered channel; a single
// goroutine folds them into:
//   - the number of requests received
//   - per route (named router whose terminal behavior answered): hits,
//     latency average and percentiles (P50, P95, P99), status codes
//   - per upstream: selections by proxy leaves and current health
//
// Emitting never blocks the request path; when the buffer is full the event
// is dropped. On shutdown the collector drains what is still buffered.
//
//	collector := metrics.NewCollector(1000, logger, metrics.NewExporter(registry))
//	collector.Start(ctx)
//	collector.Emit(metrics.MetricEvent{Type: metrics.EventRouteHandled, Route: "api", ...})
//	snap := collector.Snapshot()
//
// The same counters are mirrored into Prometheus by Exporter.
package metrics
