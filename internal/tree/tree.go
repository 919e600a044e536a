package tree

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/angeloszaimis/pathrouter/config"
	"github.com/angeloszaimis/pathrouter/internal/circuitbreaker"
	"github.com/angeloszaimis/pathrouter/internal/fileserver"
	"github.com/angeloszaimis/pathrouter/internal/leaf"
	"github.com/angeloszaimis/pathrouter/internal/metrics"
	"github.com/angeloszaimis/pathrouter/internal/proxy"
	"github.com/angeloszaimis/pathrouter/internal/strategy"
	"github.com/angeloszaimis/pathrouter/internal/upstream"
	"github.com/angeloszaimis/pathrouter/pkg/router"
)

// Deps are the shared services leaves are built on. Collector, Exporter
// and Breakers may be nil; metrics and prometheus leaves then fail to build.
type Deps struct {
	Logger    *slog.Logger
	Collector *metrics.Collector
	Exporter  *metrics.Exporter
	Breakers  *circuitbreaker.Registry
}

type Tree struct {
	Root      *router.Router
	Routers   map[string]*router.Router
	Upstreams []*upstream.Upstream
	closers   []io.Closer
}

// Build creates one router per declared name, installs its terminal
// behavior and binds its mounts in declaration order. cfg is expected to
// have passed Validate.
func Build(cfg *config.Config, deps Deps) (*Tree, error) {
	t := &Tree{Routers: make(map[string]*router.Router, len(cfg.Routers))}

	for _, rc := range cfg.Routers {
		t.Routers[rc.Name] = router.New()
	}

	for _, rc := range cfg.Routers {
		h, err := t.buildLeaf(rc.Leaf, deps)
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("router %q: %w", rc.Name, err)
		}

		r := t.Routers[rc.Name]
		r.SetUnmatched(instrument(rc.Name, h, deps))

		for _, m := range rc.Mounts {
			target, ok := t.Routers[m.Target]
			if !ok {
				t.Close()
				return nil, fmt.Errorf("router %q: %w %q", rc.Name, config.ErrUnknownRouter, m.Target)
			}

			if err := r.BindExpr(m.Pattern, target); err != nil {
				t.Close()
				return nil, fmt.Errorf("router %q: %w", rc.Name, err)
			}
		}
	}

	root, ok := t.Routers[cfg.Root]
	if !ok {
		t.Close()
		return nil, fmt.Errorf("root: %w %q", config.ErrUnknownRouter, cfg.Root)
	}
	t.Root = root

	return t, nil
}

// Close releases resources held by leaves, such as open directories.
func (t *Tree) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (t *Tree) buildLeaf(lc config.LeafConfig, deps Deps) (router.Handler, error) {
	switch lc.Type {
	case "", config.LeafNotFound:
		return router.NotFound, nil

	case config.LeafStatic:
		return leaf.Static{Status: lc.Status, Body: lc.Body, ContentType: lc.ContentType}, nil

	case config.LeafRedirect:
		return leaf.Redirect{Location: lc.Location, Status: lc.Status, AppendPath: lc.AppendPath}, nil

	case config.LeafFilesystem:
		fsLeaf, err := fileserver.New(lc.Root, deps.Logger)
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, fsLeaf)
		return fsLeaf, nil

	case config.LeafProxy:
		return t.buildProxy(lc, deps)

	case config.LeafMetrics:
		if deps.Collector == nil {
			return nil, errors.New("metrics leaf needs a collector")
		}
		return router.FromHTTP(deps.Collector.Handler()), nil

	case config.LeafPrometheus:
		if deps.Exporter == nil {
			return nil, errors.New("prometheus leaf needs an exporter")
		}
		return router.FromHTTP(deps.Exporter.Handler()), nil

	default:
		return nil, fmt.Errorf("unknown leaf type %q", lc.Type)
	}
}

func (t *Tree) buildProxy(lc config.LeafConfig, deps Deps) (router.Handler, error) {
	s, err := strategy.New(lc.Strategy, lc.VirtualNodes)
	if err != nil {
		return nil, err
	}

	ups := make([]*upstream.Upstream, 0, len(lc.Upstreams))
	for _, uc := range lc.Upstreams {
		u, err := url.Parse(uc.URL)
		if err != nil {
			return nil, fmt.Errorf("upstream %q: %w", uc.URL, err)
		}
		ups = append(ups, upstream.New(u, uc.Weight))
	}

	for _, u := range ups {
		deps.Collector.Emit(metrics.MetricEvent{
			Type:     metrics.EventUpstreamHealth,
			Upstream: u.URL().String(),
			Healthy:  u.IsHealthy(),
		})
	}
	t.Upstreams = append(t.Upstreams, ups...)

	pool := proxy.NewPool(ups, s, deps.Breakers)
	return proxy.NewLeaf(deps.Logger, pool, deps.Collector), nil
}

// instrument reports every answer from route to the collector.
func instrument(route string, h router.Handler, deps Deps) router.Handler {
	return router.HandlerFunc(func(ex router.Exchange, path string) {
		start := time.Now()
		h.Handle(ex, path)
		elapsed := time.Since(start)

		deps.Collector.Emit(metrics.MetricEvent{
			Type:       metrics.EventRouteHandled,
			Route:      route,
			Duration:   elapsed,
			StatusCode: ex.Status(),
		})

		deps.Logger.Debug("Route handled",
			slog.String("route", route),
			slog.String("remainder", path),
			slog.Int("status", ex.Status()),
			slog.Duration("duration", elapsed))
	})
}

// Describe renders the routers reachable from the root, one per line,
// indented under the mount that reaches them. Shared routers appear under
// every parent.
func Describe(cfg *config.Config) string {
	var b strings.Builder
	describe(&b, cfg, cfg.Root, "", 0)
	return b.String()
}

func describe(b *strings.Builder, cfg *config.Config, name, via string, depth int) {
	rc, _ := cfg.Router(name)

	kind := rc.Leaf.Type
	if kind == "" {
		kind = config.LeafNotFound
	}

	fmt.Fprintf(b, "%s%s%s [%s]\n", strings.Repeat("  ", depth), via, name, kind)
	for _, m := range rc.Mounts {
		describe(b, cfg, m.Target, fmt.Sprintf("%q -> ", m.Pattern), depth+1)
	}
}
