package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	LeafNotFound   = "not_found"
	LeafStatic     = "static"
	LeafFilesystem = "filesystem"
	LeafProxy      = "proxy"
	LeafMetrics    = "metrics"
	LeafPrometheus = "prometheus"
	LeafRedirect   = "redirect"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
}

type CircuitBreakerConfig struct {
	Threshold int    `mapstructure:"threshold"`
	Timeout   string `mapstructure:"timeout"`
}

type MetricsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

type UpstreamConfig struct {
	URL    string `mapstructure:"url"`
	Weight int    `mapstructure:"weight"`
}

// LeafConfig describes a router's terminal behavior. Which fields apply
// depends on Type.
type LeafConfig struct {
	Type string `mapstructure:"type"`

	// static
	Status      int    `mapstructure:"status"`
	Body        string `mapstructure:"body"`
	ContentType string `mapstructure:"content_type"`

	// filesystem
	Root string `mapstructure:"root"`

	// redirect
	Location   string `mapstructure:"location"`
	AppendPath bool   `mapstructure:"append_path"`

	// proxy
	Strategy     string           `mapstructure:"strategy"`
	VirtualNodes int              `mapstructure:"virtual_nodes"`
	Upstreams    []UpstreamConfig `mapstructure:"upstreams"`
}

type MountConfig struct {
	Pattern string `mapstructure:"pattern"`
	Target  string `mapstructure:"target"`
}

type RouterConfig struct {
	Name   string        `mapstructure:"name"`
	Mounts []MountConfig `mapstructure:"mounts"`
	Leaf   LeafConfig    `mapstructure:"leaf"`
}

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	HealthCheck    HealthCheckConfig    `mapstructure:"health_check"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
	Root           string               `mapstructure:"root"`
	Routers        []RouterConfig       `mapstructure:"routers"`
}

// Load reads configuration from file, or from config.yaml in ./config or
// the working directory when file is empty. Values from a .env file and the
// environment override the file. The result is validated.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.trust_proxy_headers", false)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("health_check.interval", "2s")
	v.SetDefault("circuit_breaker.threshold", 5)
	v.SetDefault("circuit_breaker.timeout", "30s")
	v.SetDefault("metrics.buffer_size", 1000)
	v.SetDefault("root", "root")
	v.SetDefault("routers", []map[string]any{{"name": "root"}})

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Router returns the router declared under name.
func (c *Config) Router(name string) (RouterConfig, bool) {
	for _, r := range c.Routers {
		if r.Name == name {
			return r, true
		}
	}

	return RouterConfig{}, false
}
