// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/nrequest"
	"github.com/gogama/nrequest/address"
	"github.com/gogama/nrequest/cache"
	"github.com/gogama/nrequest/cache/rediscache"
	"github.com/gogama/nrequest/plugins"
	"github.com/gogama/nrequest/request"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetAfter removes variables that godotenv adds to the process
// environment.
func unsetAfter(t *testing.T, keys ...string) {
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(WithSearchDirs(t.TempDir()))
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, 100, cfg.HTTP.MaxIdleConns)
		assert.Equal(t, 90*time.Second, cfg.HTTP.IdleConnTimeout)
		assert.False(t, cfg.Cache.Enabled)
		assert.Equal(t, request.UseProtocolCachePolicy, cfg.Cache.CachePolicy())
		assert.Equal(t, cache.AllowedInMemoryOnly, cfg.Cache.StoragePolicy())
		assert.Equal(t, request.DefaultTimeout, cfg.Request.Timeout)
	})
	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "nreq.yaml", `
log:
  level: debug
  format: console
http:
  timeout: 5s
cache:
  enabled: true
  policy: return_cache_data_else_load
  storage: allowed
  redis:
    addr: localhost:6379
    ttl: 10m
request:
  timeout: 3s
  headers:
    X-Api-Key: abc
`)
		cfg, err := Load(WithSearchDirs(dir))
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, request.ReturnCacheDataElseLoad, cfg.Cache.CachePolicy())
		assert.Equal(t, cache.Allowed, cfg.Cache.StoragePolicy())
		assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
		assert.Equal(t, 10*time.Minute, cfg.Cache.Redis.TTL)
		assert.Equal(t, 3*time.Second, cfg.Request.Timeout)
		assert.Len(t, cfg.Request.Headers, 1)
	})
	t.Run("explicit file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "custom.yml", "log:\n  level: warn\n")
		cfg, err := Load(WithConfigFile(path), WithSearchDirs(t.TempDir()))
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Log.Level)
	})
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nrequest/config: read config")
	})
	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "nreq.yaml", "log:\n  level: debug\nhttp:\n  timeout: 5s\n")
		t.Setenv("NREQ_LOG_LEVEL", "error")
		t.Setenv("NREQ_HTTP_TIMEOUT", "2s")
		t.Setenv("NREQ_CACHE_ENABLED", "true")
		t.Setenv("NREQ_CACHE_REDIS_ADDR", "redis:6380")
		cfg, err := Load(WithSearchDirs(dir))
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, 2*time.Second, cfg.HTTP.Timeout)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, "redis:6380", cfg.Cache.Redis.Addr)
	})
	t.Run("env file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".env", "NREQ_REQUEST_BEARER_TOKEN=tok\nNREQ_LOG_FORMAT=json\n")
		unsetAfter(t, "NREQ_REQUEST_BEARER_TOKEN")
		t.Setenv("NREQ_LOG_FORMAT", "console")
		cfg, err := Load(WithSearchDirs(dir))
		require.NoError(t, err)
		assert.Equal(t, "tok", cfg.Request.BearerToken)
		assert.Equal(t, "console", cfg.Log.Format, "process environment wins over .env")
	})
	t.Run("explicit env file missing", func(t *testing.T) {
		_, err := Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nrequest/config: load env file")
	})
	t.Run("invalid", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "nreq.yaml", `
log:
  level: loud
cache:
  redis:
    addr: nowhere
`)
		_, err := Load(WithSearchDirs(dir))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.level must be one of")
		assert.Contains(t, err.Error(), "cache.redis.addr must be host:port")
	})
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	cfg.HTTP.MaxIdleConns = -1
	cfg.Cache.Policy = "sometimes"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "nrequest/config: "))
	assert.Contains(t, err.Error(), "http.max_idle_conns must be at least 0")
	assert.Contains(t, err.Error(), "cache.policy must be one of")
}

func TestLogConfig_Logger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		c := LogConfig{Level: "warn", Format: "json"}
		l := c.Logger(&buf)
		l.Info().Msg("dropped")
		l.Warn().Msg("kept")
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "kept", rec["message"])
		assert.Equal(t, "warn", rec["level"])
		assert.Contains(t, rec, "time")
	})
	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		c := LogConfig{Level: "info", Format: "console", Output: "stdout"}
		l := c.Logger(&buf)
		l.Info().Msg("hello")
		assert.Contains(t, buf.String(), "hello")
		assert.False(t, json.Valid(buf.Bytes()))
	})
	t.Run("bad level", func(t *testing.T) {
		var buf bytes.Buffer
		c := LogConfig{Level: "loud", Format: "json"}
		l := c.Logger(&buf)
		l.Debug().Msg("dropped")
		assert.Empty(t, buf.String())
	})
}

func TestBuild(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		cfg := &Config{}
		cfg.ApplyDefaults()
		s := cfg.Build(&bytes.Buffer{})
		defer func() { assert.NoError(t, s.Close()) }()
		assert.Nil(t, s.Cache)
		assert.NotNil(t, s.Client)
		p := s.Params(address.New("example.com"))
		assert.Equal(t, request.DefaultTimeout, p.Timeout)
		assert.Nil(t, p.CacheSettings)
	})
	t.Run("telemetry", func(t *testing.T) {
		cfg := &Config{Telemetry: TelemetryConfig{Tracing: true, Metrics: true}}
		cfg.ApplyDefaults()
		s := cfg.Build(&bytes.Buffer{})
		defer func() { assert.NoError(t, s.Close()) }()
		var tracing, metrics bool
		for _, pl := range s.Client.Provider.Plugins() {
			switch pl.(type) {
			case *plugins.Tracing:
				tracing = true
			case *plugins.Metrics:
				metrics = true
			}
		}
		assert.True(t, tracing)
		assert.True(t, metrics)
	})
	t.Run("redis tier", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &Config{Cache: CacheConfig{
			Enabled: true,
			Storage: "allowed",
			Policy:  "return_cache_data_else_load",
			Redis:   RedisConfig{Addr: mr.Addr(), Prefix: "test", TTL: time.Minute},
		}}
		cfg.ApplyDefaults()
		require.NoError(t, cfg.Validate())
		s := cfg.Build(&bytes.Buffer{})
		tiered, ok := s.Cache.(*cache.Tiered)
		require.True(t, ok)
		store, ok := tiered.Persistent.(*rediscache.Store)
		require.True(t, ok)
		assert.Equal(t, "test", store.Prefix)

		p := s.Params(address.New("example.com"), request.WithCachePolicy(request.ReturnCacheDataDontLoad))
		require.NotNil(t, p.CacheSettings)
		assert.Same(t, s.Cache, p.CacheSettings.Cache)
		assert.Equal(t, cache.Allowed, p.CacheSettings.StoragePolicy)
		assert.Equal(t, request.ReturnCacheDataDontLoad, p.CachePolicy, "caller options win")

		require.NoError(t, s.Close())
		assert.Error(t, store.Client.Ping(context.Background()).Err())
	})
	t.Run("end to end", func(t *testing.T) {
		var mu sync.Mutex
		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			got = r.Header.Clone()
			mu.Unlock()
			_, _ = w.Write([]byte(`{"name":"ok"}`))
		}))
		defer server.Close()

		cfg := &Config{
			Log: LogConfig{Level: "debug", Exchanges: true},
			Cache: CacheConfig{
				Enabled: true,
				Policy:  "return_cache_data_else_load",
			},
			Request: RequestConfig{
				BearerToken: "tok",
				Headers:     map[string]string{"x-api-key": "abc"},
			},
		}
		cfg.ApplyDefaults()
		require.NoError(t, cfg.Validate())
		var buf bytes.Buffer
		s := cfg.Build(&buf)
		defer func() { assert.NoError(t, s.Close()) }()

		addr, err := address.Parse(server.URL)
		require.NoError(t, err)
		type result struct {
			Name string `json:"name"`
		}
		for i := 0; i < 2; i++ {
			v, err := nrequest.Do[result](context.Background(), s.Client, s.Params(addr))
			require.NoError(t, err)
			assert.Equal(t, "ok", v.Name)
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "Bearer tok", got.Get("Authorization"))
		assert.Equal(t, "abc", got.Get("X-Api-Key"))
		assert.NotEmpty(t, got.Get("X-Request-ID"))

		var messages []string
		var fromCache []interface{}
		scanner := bufio.NewScanner(&buf)
		for scanner.Scan() {
			var rec map[string]interface{}
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
			messages = append(messages, rec["message"].(string))
			if rec["message"] == "nrequest: received response" {
				fromCache = append(fromCache, rec["from_cache"])
			}
		}
		assert.Contains(t, messages, "nrequest: sending request")
		assert.Contains(t, messages, "nrequest: finished exchange")
		assert.Equal(t, []interface{}{false, true}, fromCache)
	})
}
