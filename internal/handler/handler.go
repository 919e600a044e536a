package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/angeloszaimis/pathrouter/internal/metrics"
	"github.com/angeloszaimis/pathrouter/pkg/router"
)

const (
	RequestIDHeader = "X-Request-ID"
	tracerName      = "github.com/angeloszaimis/pathrouter"
)

type RouterHandler struct {
	logger    *slog.Logger
	root      *router.Router
	collector *metrics.Collector
	tracer    trace.Tracer
}

// NewRouterHandler serves every request through root. collector may be
// nil. Spans go to the global OpenTelemetry tracer provider.
func NewRouterHandler(logger *slog.Logger, root *router.Router, collector *metrics.Collector) *RouterHandler {
	return &RouterHandler{
		logger:    logger,
		root:      root,
		collector: collector,
		tracer:    otel.Tracer(tracerName),
	}
}

func (h *RouterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, requestID)

	ctx, span := h.tracer.Start(r.Context(), "dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	h.collector.Emit(metrics.MetricEvent{Type: metrics.EventRequestReceived})

	log := h.logger.With(slog.String("request_id", requestID))
	log.Info("Received request",
		slog.String("from", r.RemoteAddr),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("proto", r.Proto),
		slog.String("user_agent", r.UserAgent()))

	ex := router.NewExchange(w, r.WithContext(ctx))
	h.root.Dispatch(ex, strings.TrimPrefix(r.URL.Path, "/"))

	status := ex.Status()
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	log.Info("Completed request",
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)))
}
