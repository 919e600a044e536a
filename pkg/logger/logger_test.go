package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/pathrouter/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("should create a logger", func() {
			Expect(logger.New("info", false, "dev")).NotTo(BeNil())
		})

		It("should default to info for an invalid level", func() {
			log := logger.New("invalid", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
		})
	})

	DescribeTable("ParseLevel",
		func(name string, want slog.Level) {
			Expect(logger.ParseLevel(name)).To(Equal(want))
		},
		Entry("debug", "debug", slog.LevelDebug),
		Entry("info", "info", slog.LevelInfo),
		Entry("warn", "WARN", slog.LevelWarn),
		Entry("error", "error", slog.LevelError),
		Entry("unknown", "verbose", slog.LevelInfo),
	)

	Describe("NewWithWriter", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
		})

		It("should write JSON in prod", func() {
			log := logger.NewWithWriter(buf, "info", false, "prod")
			log.Info("dispatched", slog.String("route", "api"))

			var line map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
			Expect(line["msg"]).To(Equal("dispatched"))
			Expect(line["route"]).To(Equal("api"))
			Expect(line["environment"]).To(Equal("prod"))
		})

		It("should write text outside prod", func() {
			log := logger.NewWithWriter(buf, "info", false, "dev")
			log.Info("dispatched")

			Expect(buf.String()).To(ContainSubstring("msg=dispatched"))
			Expect(buf.String()).To(ContainSubstring("environment=dev"))
		})

		It("should drop records below the level", func() {
			log := logger.NewWithWriter(buf, "warn", false, "dev")
			log.Info("quiet")

			Expect(buf.Len()).To(BeZero())
		})
	})

	Describe("Std", func() {
		It("should route Println through the slog handler", func() {
			buf := &bytes.Buffer{}
			std := logger.Std(logger.NewWithWriter(buf, "info", false, "dev"), slog.LevelError)

			std.Println("recovered")

			Expect(buf.String()).To(ContainSubstring("level=ERROR"))
			Expect(buf.String()).To(ContainSubstring("recovered"))
		})
	})
})
