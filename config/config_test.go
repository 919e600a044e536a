package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/pathrouter/config"
)

const treeYAML = `
server:
  address: ":9090"
  environment: "staging"

logging:
  level: "debug"

root: edge

routers:
  - name: edge
    mounts:
      - pattern: "^api/"
        target: api
      - pattern: "^static/"
        target: files
      - pattern: "^v1/"
        target: v1
  - name: v1
    mounts:
      - pattern: "^api/"
        target: api
  - name: api
    leaf:
      type: proxy
      strategy: least-conn
      upstreams:
        - url: "http://localhost:8081"
          weight: 2
        - url: "http://localhost:8082"
  - name: files
    leaf:
      type: filesystem
      root: ./public
`

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir = GinkgoT().TempDir()
		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.Unsetenv("SERVER_ADDRESS")
		os.Unsetenv("LOGGING_LEVEL")
		os.Unsetenv("SERVER_TRUST_PROXY_HEADERS")
	})

	writeConfig := func(name, content string) string {
		path := filepath.Join(tempDir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	Describe("Load", func() {
		Context("with an explicit file", func() {
			It("should load the routing tree", func() {
				cfg, err := config.Load(writeConfig("tree.yaml", treeYAML))
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Address).To(Equal(":9090"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvStaging))
				Expect(cfg.Root).To(Equal("edge"))
				Expect(cfg.Routers).To(HaveLen(4))

				edge, ok := cfg.Router("edge")
				Expect(ok).To(BeTrue())
				Expect(edge.Mounts).To(Equal([]config.MountConfig{
					{Pattern: "^api/", Target: "api"},
					{Pattern: "^static/", Target: "files"},
					{Pattern: "^v1/", Target: "v1"},
				}))

				api, _ := cfg.Router("api")
				Expect(api.Leaf.Type).To(Equal(config.LeafProxy))
				Expect(api.Leaf.Upstreams).To(HaveLen(2))
				Expect(api.Leaf.Upstreams[0].Weight).To(Equal(2))
			})

			It("should fill defaults", func() {
				cfg, err := config.Load(writeConfig("tree.yaml", treeYAML))
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.HealthCheck.Interval).To(Equal("2s"))
				Expect(cfg.CircuitBreaker.Threshold).To(Equal(5))
				Expect(cfg.CircuitBreaker.Timeout).To(Equal("30s"))
				Expect(cfg.Metrics.BufferSize).To(Equal(1000))
			})

			It("should fail when the file does not exist", func() {
				_, err := config.Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with config.yaml in the working directory", func() {
			It("should find it", func() {
				writeConfig("config.yaml", treeYAML)

				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Root).To(Equal("edge"))
			})
		})

		Context("without any config file", func() {
			It("should serve a single not-found root", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Address).To(Equal(":8080"))
				Expect(cfg.Root).To(Equal("root"))
				Expect(cfg.Routers).To(HaveLen(1))
				Expect(cfg.Routers[0].Name).To(Equal("root"))
				Expect(cfg.Server.TrustProxyHeaders).To(BeFalse())
			})
		})

		Context("with environment overrides", func() {
			It("should prefer the environment", func() {
				os.Setenv("SERVER_ADDRESS", "127.0.0.1:7000")

				cfg, err := config.Load(writeConfig("tree.yaml", treeYAML))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal("127.0.0.1:7000"))
			})

			It("should enable forwarded headers from the environment", func() {
				os.Setenv("SERVER_TRUST_PROXY_HEADERS", "true")

				cfg, err := config.Load(writeConfig("tree.yaml", treeYAML))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.TrustProxyHeaders).To(BeTrue())
			})

			It("should read a .env file", func() {
				writeConfig(".env", "LOGGING_LEVEL=warn\n")

				cfg, err := config.Load(writeConfig("tree.yaml", treeYAML))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelWarn))
			})
		})

		It("should reject an invalid file", func() {
			_, err := config.Load(writeConfig("bad.yaml", `
routers:
  - name: root
    mounts:
      - pattern: "("
        target: root
`))
			Expect(err).To(MatchError(ContainSubstring("invalid configuration")))
		})
	})
})
