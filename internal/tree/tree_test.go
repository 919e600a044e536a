package tree_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angeloszaimis/pathrouter/config"
	"github.com/angeloszaimis/pathrouter/internal/circuitbreaker"
	"github.com/angeloszaimis/pathrouter/internal/metrics"
	"github.com/angeloszaimis/pathrouter/internal/tree"
)

func static(body string) config.LeafConfig {
	return config.LeafConfig{Type: config.LeafStatic, Status: http.StatusOK, Body: body}
}

var _ = Describe("Tree", func() {
	var (
		cfg       *config.Config
		deps      tree.Deps
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)

		exporter := metrics.NewExporter(prometheus.NewRegistry())
		collector = metrics.NewCollector(100, log, exporter)
		collector.Start(ctx)

		deps = tree.Deps{
			Logger:    log,
			Collector: collector,
			Exporter:  exporter,
			Breakers:  circuitbreaker.NewRegistry(5, 0),
		}

		cfg = &config.Config{
			Root: "root",
			Routers: []config.RouterConfig{
				{
					Name: "root",
					Mounts: []config.MountConfig{
						{Pattern: "^v1/", Target: "v1"},
						{Pattern: "^v2/", Target: "v2"},
						{Pattern: "^health$", Target: "health"},
						{Pattern: "^_metrics$", Target: "stats"},
					},
				},
				{Name: "v1", Mounts: []config.MountConfig{{Pattern: "^users/", Target: "users"}}},
				{Name: "v2", Mounts: []config.MountConfig{{Pattern: "^people/", Target: "users"}}},
				{Name: "users", Leaf: static("users")},
				{Name: "health", Leaf: static("ok")},
				{Name: "stats", Leaf: config.LeafConfig{Type: config.LeafMetrics}},
			},
		}
	})

	serve := func(t *tree.Tree, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		t.Root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	Describe("Build", func() {
		It("should create one shared router per name", func() {
			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			Expect(t.Routers).To(HaveLen(6))
			Expect(t.Root).To(BeIdenticalTo(t.Routers["root"]))

			v1 := t.Routers["v1"].Bindings()
			v2 := t.Routers["v2"].Bindings()
			Expect(v1[0].Target).To(BeIdenticalTo(t.Routers["users"]))
			Expect(v2[0].Target).To(BeIdenticalTo(t.Routers["users"]))
		})

		It("should bind mounts in declaration order", func() {
			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			var patterns []string
			for _, b := range t.Root.Bindings() {
				patterns = append(patterns, b.Pattern.String())
			}
			Expect(patterns).To(Equal([]string{"^v1/", "^v2/", "^health$", "^_metrics$"}))
		})

		It("should route through shared routers from either parent", func() {
			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			Expect(serve(t, "/v1/users/7").Body.String()).To(Equal("users"))
			Expect(serve(t, "/v2/people/7").Body.String()).To(Equal("users"))
			Expect(serve(t, "/health").Body.String()).To(Equal("ok"))
		})

		It("should 404 from the deepest router reached", func() {
			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			Expect(serve(t, "/v1/orders").Code).To(Equal(http.StatusNotFound))
			Expect(serve(t, "/unknown").Code).To(Equal(http.StatusNotFound))
		})

		It("should report which route answered", func() {
			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			serve(t, "/v1/users/1")
			serve(t, "/v1/orders")

			Eventually(func() map[string]metrics.RouteMetrics {
				return collector.Snapshot().Routes
			}).Should(And(HaveKey("users"), HaveKey("v1")))

			snap := collector.Snapshot()
			Expect(snap.Routes["users"].StatusCodes[http.StatusOK]).To(Equal(int64(1)))
			Expect(snap.Routes["v1"].StatusCodes[http.StatusNotFound]).To(Equal(int64(1)))
		})

		It("should serve the metrics snapshot from a metrics leaf", func() {
			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			rec := serve(t, "/_metrics")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
		})

		It("should serve files from a filesystem leaf", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "app.js"), []byte("js"), 0o644)).To(Succeed())

			cfg.Routers = append(cfg.Routers, config.RouterConfig{
				Name: "files",
				Leaf: config.LeafConfig{Type: config.LeafFilesystem, Root: dir},
			})
			cfg.Routers[0].Mounts = append(cfg.Routers[0].Mounts, config.MountConfig{Pattern: "^static/", Target: "files"})

			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(t.Close)

			Expect(serve(t, "/static/app.js").Body.String()).To(Equal("js"))
		})

		It("should collect proxy upstreams for health checking", func() {
			cfg.Routers = append(cfg.Routers, config.RouterConfig{
				Name: "api",
				Leaf: config.LeafConfig{
					Type:     config.LeafProxy,
					Strategy: "weighted-round-robin",
					Upstreams: []config.UpstreamConfig{
						{URL: "http://localhost:9001", Weight: 3},
						{URL: "http://localhost:9002"},
					},
				},
			})

			t, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			Expect(t.Upstreams).To(HaveLen(2))
			Expect(t.Upstreams[0].Weight()).To(Equal(3))
			Expect(t.Upstreams[1].Weight()).To(Equal(1))
		})

		It("should publish every proxy upstream as healthy from the start", func() {
			cfg.Routers = append(cfg.Routers, config.RouterConfig{
				Name: "api",
				Leaf: config.LeafConfig{
					Type:      config.LeafProxy,
					Upstreams: []config.UpstreamConfig{{URL: "http://localhost:9001"}},
				},
			})

			_, err := tree.Build(cfg, deps)
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() map[string]metrics.UpstreamMetrics {
				return collector.Snapshot().Upstreams
			}).Should(HaveKeyWithValue("http://localhost:9001", metrics.UpstreamMetrics{Healthy: true}))
		})

		It("should fail on a filesystem root that does not exist", func() {
			cfg.Routers[3].Leaf = config.LeafConfig{Type: config.LeafFilesystem, Root: "/does/not/exist"}

			_, err := tree.Build(cfg, deps)
			Expect(err).To(MatchError(ContainSubstring(`router "users"`)))
		})

		It("should fail on a prometheus leaf without an exporter", func() {
			deps.Exporter = nil
			cfg.Routers[4].Leaf = config.LeafConfig{Type: config.LeafPrometheus}

			_, err := tree.Build(cfg, deps)
			Expect(err).To(HaveOccurred())
		})

		It("should fail on an unknown mount target", func() {
			cfg.Routers[1].Mounts[0].Target = "nowhere"

			_, err := tree.Build(cfg, deps)
			Expect(err).To(MatchError(config.ErrUnknownRouter))
		})

		It("should fail on a malformed pattern", func() {
			cfg.Routers[1].Mounts[0].Pattern = "(("

			_, err := tree.Build(cfg, deps)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Describe", func() {
		It("should render the reachable tree with shared routers under each parent", func() {
			Expect(tree.Describe(cfg)).To(Equal(`root [not_found]
  "^v1/" -> v1 [not_found]
    "^users/" -> users [static]
  "^v2/" -> v2 [not_found]
    "^people/" -> users [static]
  "^health$" -> health [static]
  "^_metrics$" -> stats [metrics]
`))
		})
	})
})
