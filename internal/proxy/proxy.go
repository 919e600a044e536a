package proxy

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/angeloszaimis/pathrouter/internal/metrics"
	"github.com/angeloszaimis/pathrouter/pkg/router"
)

// Leaf forwards requests to the pool. It is meant to be the terminal
// behavior of a router with no bindings.
type Leaf struct {
	logger    *slog.Logger
	pool      *Pool
	collector *metrics.Collector
}

// NewLeaf creates a proxy leaf. collector may be nil.
func NewLeaf(logger *slog.Logger, pool *Pool, collector *metrics.Collector) *Leaf {
	return &Leaf{
		logger:    logger,
		pool:      pool,
		collector: collector,
	}
}

// Handle sends the request to an upstream at path "/"+path, keeping the
// query string. 503 when no upstream is available, 502 when the upstream
// cannot be reached.
func (l *Leaf) Handle(ex router.Exchange, path string) {
	req := ex.Request()
	clientIP := extractClientIP(req)

	chosen, err := l.pool.Reserve(clientIP)
	if err != nil {
		l.logger.Warn("No upstream available",
			slog.String("client", clientIP),
			slog.String("path", path))
		ex.WriteError(http.StatusServiceUnavailable)
		return
	}
	defer chosen.DecrementConn()

	target := chosen.URL().String()
	l.collector.Emit(metrics.MetricEvent{
		Type:     metrics.EventUpstreamSelected,
		Upstream: target,
	})

	l.logger.Debug("Forwarding to upstream",
		slog.String("client", clientIP),
		slog.String("upstream", target),
		slog.String("path", path))

	var failed bool
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(chosen.URL())
			pr.Out.URL.Path = joinPath(chosen.URL().Path, path)
			pr.Out.URL.RawPath = ""
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			failed = true
			l.logger.Error("Upstream request failed",
				slog.String("upstream", target),
				slog.Any("err", err))
			ex.WriteError(http.StatusBadGateway)
		},
		ModifyResponse: func(res *http.Response) error {
			res.Header.Set("X-Upstream-Server", target)
			return nil
		},
	}

	start := time.Now()
	rp.ServeHTTP(ex.ResponseWriter(), req)
	chosen.RecordResponse(time.Since(start))

	cb := l.pool.Breaker(chosen)
	if cb == nil {
		return
	}

	if failed || ex.Status() >= http.StatusInternalServerError {
		cb.RecordFailure()
	} else {
		cb.RecordSuccess()
	}
}

func joinPath(base, rest string) string {
	return strings.TrimSuffix(base, "/") + "/" + rest
}

// extractClientIP returns the host part of RemoteAddr. Forwarded headers
// are only honored when the front handler has already rewritten
// RemoteAddr from them.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
