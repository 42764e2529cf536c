// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gogama/nrequest/cache"
	"github.com/gogama/nrequest/request"
)

// Config is the root configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Request RequestConfig `mapstructure:"request"`

	// Telemetry turns on the OpenTelemetry plugins. They use the
	// global tracer and meter providers.
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig configures the zerolog logger shared by the client and the
// logging plugin.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output" validate:"oneof=stdout stderr"`
	// Exchanges turns on the lifecycle logging plugin.
	Exchanges bool `mapstructure:"exchanges"`
}

// HTTPConfig configures the net/http client behind the transport.
type HTTPConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" validate:"gte=0"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Policy  string      `mapstructure:"policy" validate:"oneof=use_protocol_cache_policy reload_ignoring_cache_data return_cache_data_else_load return_cache_data_dont_load"`
	Storage string      `mapstructure:"storage" validate:"oneof=allowed allowed_in_memory_only not_allowed"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the optional persistent cache tier. An empty
// Addr disables it.
type RedisConfig struct {
	Addr   string        `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// RequestConfig holds defaults applied to every request.
type RequestConfig struct {
	Timeout         time.Duration     `mapstructure:"timeout"`
	Headers         map[string]string `mapstructure:"headers"`
	Logging         bool              `mapstructure:"logging"`
	RequestIDHeader string            `mapstructure:"request_id_header"`
	BearerToken     string            `mapstructure:"bearer_token"`
}

// TelemetryConfig selects the OpenTelemetry plugins.
type TelemetryConfig struct {
	Tracing bool `mapstructure:"tracing"`
	Metrics bool `mapstructure:"metrics"`
}

// ApplyDefaults fills in empty fields.
func (c *Config) ApplyDefaults() {
	c.Log.ApplyDefaults()
	if c.HTTP.MaxIdleConns == 0 {
		c.HTTP.MaxIdleConns = 100
	}
	if c.HTTP.IdleConnTimeout == 0 {
		c.HTTP.IdleConnTimeout = 90 * time.Second
	}
	if c.Cache.Policy == "" {
		c.Cache.Policy = request.UseProtocolCachePolicy.String()
	}
	if c.Cache.Storage == "" {
		c.Cache.Storage = cache.AllowedInMemoryOnly.String()
	}
	if c.Request.Timeout == 0 {
		c.Request.Timeout = request.DefaultTimeout
	}
}

// ApplyDefaults fills in empty logging fields.
func (c *LogConfig) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return v
}

// Validate checks the configuration, reporting every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("nrequest/config: %w", err)
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fieldMessage(e))
	}
	return fmt.Errorf("nrequest/config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	// Namespace starts with the root type name.
	name := e.Namespace()
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	switch e.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", name, e.Param(), e.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got: %v)", name, e.Param(), e.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port (got: %v)", name, e.Value())
	default:
		return fmt.Sprintf("%s failed %s", name, e.Tag())
	}
}

// CachePolicy returns the configured cache policy. The value must have
// passed Validate.
func (c *CacheConfig) CachePolicy() request.CachePolicy {
	for p := request.UseProtocolCachePolicy; p <= request.ReturnCacheDataDontLoad; p++ {
		if p.String() == c.Policy {
			return p
		}
	}
	return request.UseProtocolCachePolicy
}

// StoragePolicy returns the configured storage policy. The value must
// have passed Validate.
func (c *CacheConfig) StoragePolicy() cache.StoragePolicy {
	for p := cache.AllowedInMemoryOnly; p <= cache.NotAllowed; p++ {
		if p.String() == c.Storage {
			return p
		}
	}
	return cache.AllowedInMemoryOnly
}

// Logger builds a zerolog logger. If w is nil the configured output
// stream is used.
func (c *LogConfig) Logger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
		if c.Output == "stdout" {
			w = os.Stdout
		}
	}
	if c.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
