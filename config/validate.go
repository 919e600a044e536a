package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/angeloszaimis/pathrouter/internal/strategy"
	"github.com/angeloszaimis/pathrouter/pkg/router"
)

var (
	ErrUnknownRouter = errors.New("unknown router")
	ErrDuplicateName = errors.New("duplicate router name")
	ErrCycle         = errors.New("mount cycle")
)

var leafTypes = []interface{}{
	"", LeafNotFound, LeafStatic, LeafFilesystem, LeafProxy, LeafMetrics, LeafPrometheus, LeafRedirect,
}

var redirectStatuses = []interface{}{0, 301, 302, 303, 307, 308}

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Server, validation.By(func(value interface{}) error {
			sc := value.(ServerConfig)
			return validation.ValidateStruct(&sc,
				validation.Field(&sc.Environment,
					validation.Required,
					validation.In(EnvDev, EnvStaging, EnvProd),
				),
				validation.Field(&sc.Address,
					validation.Required,
					validation.By(ValidateAddress),
				),
			)
		})),
		validation.Field(&c.Logging, validation.By(func(value interface{}) error {
			lc := value.(LoggingConfig)
			return validation.ValidateStruct(&lc,
				validation.Field(&lc.Level,
					validation.Required,
					validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
				),
			)
		})),
		validation.Field(&c.HealthCheck, validation.By(func(value interface{}) error {
			hc := value.(HealthCheckConfig)
			return validation.ValidateStruct(&hc,
				validation.Field(&hc.Interval, validation.Required, validation.By(validateDuration)),
			)
		})),
		validation.Field(&c.CircuitBreaker, validation.By(func(value interface{}) error {
			cb := value.(CircuitBreakerConfig)
			return validation.ValidateStruct(&cb,
				validation.Field(&cb.Threshold, validation.Required, validation.Min(1)),
				validation.Field(&cb.Timeout, validation.Required, validation.By(validateDuration)),
			)
		})),
		validation.Field(&c.Metrics, validation.By(func(value interface{}) error {
			mc := value.(MetricsConfig)
			return validation.ValidateStruct(&mc,
				validation.Field(&mc.BufferSize, validation.Required, validation.Min(1)),
			)
		})),
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Routers,
			validation.Required,
			validation.Each(validation.By(validateRouter)),
		),
	)
	if err != nil {
		return err
	}

	return c.validateGraph()
}

// validateGraph checks names are unique, every mount target and the root
// exist, and no cycle is reachable from the root.
func (c *Config) validateGraph() error {
	byName := make(map[string]RouterConfig, len(c.Routers))
	for _, r := range c.Routers {
		if _, dup := byName[r.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
		byName[r.Name] = r
	}

	if _, ok := byName[c.Root]; !ok {
		return fmt.Errorf("root: %w %q", ErrUnknownRouter, c.Root)
	}

	for _, r := range c.Routers {
		for i, m := range r.Mounts {
			if _, ok := byName[m.Target]; !ok {
				return fmt.Errorf("routers.%s.mounts[%d]: %w %q", r.Name, i, ErrUnknownRouter, m.Target)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(byName))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(stack, " -> "), name)
		case done:
			return nil
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, m := range byName[name].Mounts {
			if err := visit(m.Target); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done

		return nil
	}

	return visit(c.Root)
}

func validateRouter(value interface{}) error {
	rc, ok := value.(RouterConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a RouterConfig")
	}

	return validation.ValidateStruct(&rc,
		validation.Field(&rc.Name, validation.Required),
		validation.Field(&rc.Mounts, validation.Each(validation.By(validateMount))),
		validation.Field(&rc.Leaf, validation.By(validateLeaf)),
	)
}

func validateMount(value interface{}) error {
	mc, ok := value.(MountConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a MountConfig")
	}

	return validation.ValidateStruct(&mc,
		validation.Field(&mc.Pattern, validation.Required, validation.By(validatePattern)),
		validation.Field(&mc.Target, validation.Required),
	)
}

func validateLeaf(value interface{}) error {
	lc, ok := value.(LeafConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a LeafConfig")
	}

	return validation.ValidateStruct(&lc,
		validation.Field(&lc.Type, validation.In(leafTypes...)),
		validation.Field(&lc.Status,
			validation.When(lc.Type == LeafStatic, validation.Min(100), validation.Max(599)),
			validation.When(lc.Type == LeafRedirect, validation.In(redirectStatuses...)),
		),
		validation.Field(&lc.Root, validation.When(lc.Type == LeafFilesystem, validation.Required)),
		validation.Field(&lc.Location, validation.When(lc.Type == LeafRedirect, validation.Required, is.URL)),
		validation.Field(&lc.Strategy, validation.When(lc.Type == LeafProxy, validation.In(toInterfaces(strategy.Names)...))),
		validation.Field(&lc.VirtualNodes, validation.Min(0)),
		validation.Field(&lc.Upstreams,
			validation.When(lc.Type == LeafProxy, validation.Required),
			validation.Each(validation.By(validateUpstream)),
		),
	)
}

func validateUpstream(value interface{}) error {
	uc, ok := value.(UpstreamConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an UpstreamConfig")
	}

	if uc.URL == "" {
		return validation.NewError("validation_empty_url", "upstream URL cannot be empty")
	}

	parsedURL, err := url.Parse(uc.URL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	if uc.Weight < 0 {
		return validation.NewError("validation_invalid_weight", "weight cannot be negative")
	}

	return nil
}

func validatePattern(value interface{}) error {
	expr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := router.Compile(expr); err != nil {
		return validation.NewError("validation_invalid_pattern", err.Error())
	}

	return nil
}

// ValidateAddress checks a host:port listen address. The host may be empty.
func ValidateAddress(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d <= 0 {
		return validation.NewError("validation_non_positive_duration", "must be greater than zero")
	}

	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, 0, len(ss)+1)
	out = append(out, "")
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
