package handler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/pathrouter/internal/handler"
	"github.com/angeloszaimis/pathrouter/internal/metrics"
	"github.com/angeloszaimis/pathrouter/pkg/logger"
	"github.com/angeloszaimis/pathrouter/pkg/router"
)

var _ = Describe("RouterHandler", func() {
	var (
		root      *router.Router
		collector *metrics.Collector
		logs      *bytes.Buffer
		h         *handler.RouterHandler
		seen      []string
	)

	BeforeEach(func() {
		seen = nil
		logs = &bytes.Buffer{}
		log := logger.NewWithWriter(logs, "info", false, "dev")

		ctx, cancel := context.WithCancel(context.Background())
		DeferCleanup(cancel)
		collector = metrics.NewCollector(10, log, nil)
		collector.Start(ctx)

		root = router.New()
		root.MustBind("^api/", router.NewLeaf(router.HandlerFunc(func(ex router.Exchange, path string) {
			seen = append(seen, path)
			ex.ResponseWriter().WriteHeader(http.StatusNoContent)
		})))

		h = handler.NewRouterHandler(log, root, collector)
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	It("should dispatch the path without its leading slash", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/api/items", nil))

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(seen).To(Equal([]string{"items"}))
	})

	It("should answer 404 for paths the tree does not know", func() {
		Expect(serve(httptest.NewRequest(http.MethodGet, "/other", nil)).Code).To(Equal(http.StatusNotFound))
	})

	It("should assign a request ID", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/api/x", nil))

		id := rec.Header().Get(handler.RequestIDHeader)
		_, err := uuid.Parse(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs.String()).To(ContainSubstring("request_id=" + id))
	})

	It("should keep an incoming request ID", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
		req.Header.Set(handler.RequestIDHeader, "abc-123")

		Expect(serve(req).Header().Get(handler.RequestIDHeader)).To(Equal("abc-123"))
	})

	It("should log the completed status", func() {
		serve(httptest.NewRequest(http.MethodGet, "/other", nil))
		Expect(logs.String()).To(ContainSubstring("status=404"))
	})

	It("should count received requests", func() {
		serve(httptest.NewRequest(http.MethodGet, "/api/x", nil))
		serve(httptest.NewRequest(http.MethodGet, "/other", nil))

		Eventually(func() int64 {
			return collector.Snapshot().TotalRequests
		}).Should(Equal(int64(2)))
	})
})

var _ = Describe("Wrap", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	It("should recover from a panicking leaf with 500", func() {
		root := router.NewLeaf(router.HandlerFunc(func(router.Exchange, string) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.Wrap(root, log, handler.WrapOptions{Environment: "prod"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})

	Context("forwarded client addresses", func() {
		var (
			remote string
			root   *router.Router
			req    *http.Request
		)

		BeforeEach(func() {
			remote = ""
			root = router.NewLeaf(router.HandlerFunc(func(ex router.Exchange, _ string) {
				remote = ex.Request().RemoteAddr
				ex.ResponseWriter().WriteHeader(http.StatusOK)
			}))

			req = httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:4321"
			req.Header.Set("X-Forwarded-For", "203.0.113.9")
		})

		It("should ignore X-Forwarded-For by default", func() {
			handler.Wrap(root, log, handler.WrapOptions{Environment: "dev"}).
				ServeHTTP(httptest.NewRecorder(), req)

			Expect(remote).To(Equal("192.0.2.1:4321"))
		})

		It("should take the client address from X-Forwarded-For when proxies are trusted", func() {
			handler.Wrap(root, log, handler.WrapOptions{Environment: "dev", TrustProxyHeaders: true}).
				ServeHTTP(httptest.NewRecorder(), req)

			Expect(remote).To(Equal("203.0.113.9"))
		})
	})
})
