// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gogama/nrequest"
	"github.com/gogama/nrequest/address"
	"github.com/gogama/nrequest/cache"
	"github.com/gogama/nrequest/cache/rediscache"
	"github.com/gogama/nrequest/plugins"
	"github.com/gogama/nrequest/request"
)

// A Setup is the set of objects built from a Config.
type Setup struct {
	// Client executes requests.
	Client *nrequest.Client
	// Logger is the logger built from the log section.
	Logger zerolog.Logger
	// Cache is the response cache, or nil if caching is disabled.
	Cache cache.Cache
	// Options are applied before caller options by Params.
	Options []request.Option

	closers []io.Closer
}

// Build constructs the client, logger, cache and default request
// options. Log output goes to w, or to the configured stream if w is
// nil. The returned Setup must be closed to release the HTTP and Redis
// connections.
func (c *Config) Build(w io.Writer) *Setup {
	s := &Setup{Logger: c.Log.Logger(w)}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		MaxIdleConns:    c.HTTP.MaxIdleConns,
		IdleConnTimeout: c.HTTP.IdleConnTimeout,
	}
	own := []request.Plugin{&plugins.RequestID{Header: c.Request.RequestIDHeader}}
	if token := c.Request.BearerToken; token != "" {
		own = append(own, &plugins.Bearer{
			Tokens: plugins.TokenFunc(func(context.Context) (string, error) {
				return token, nil
			}),
		})
	}
	if c.Log.Exchanges {
		own = append(own, &plugins.Logger{Log: &s.Logger})
	}
	if c.Telemetry.Tracing {
		own = append(own, &plugins.Tracing{})
	}
	if c.Telemetry.Metrics {
		own = append(own, &plugins.Metrics{})
	}
	s.Client = &nrequest.Client{
		Transport: nrequest.DoerTransport{Doer: &http.Client{
			Timeout:   c.HTTP.Timeout,
			Transport: transport,
		}},
		Provider: nrequest.NewProvider(own, nrequest.DefaultProvider),
		Logger:   &s.Logger,
	}

	if c.Cache.Enabled {
		tiered := &cache.Tiered{Memory: &cache.Memory{}}
		if c.Cache.Redis.Addr != "" {
			store := rediscache.New(c.Cache.Redis.Addr, c.Cache.Redis.TTL)
			store.Prefix = c.Cache.Redis.Prefix
			tiered.Persistent = store
			s.closers = append(s.closers, store)
		}
		s.Cache = tiered
	}

	s.Options = append(s.Options,
		request.WithTimeout(c.Request.Timeout),
		request.WithLogging(c.Request.Logging),
	)
	if len(c.Request.Headers) > 0 {
		h := make(http.Header, len(c.Request.Headers))
		for k, v := range c.Request.Headers {
			h.Set(k, v)
		}
		s.Options = append(s.Options, request.WithHeaders(h))
	}
	if s.Cache != nil {
		s.Options = append(s.Options,
			request.WithCache(s.Cache, c.Cache.StoragePolicy()),
			request.WithCachePolicy(c.Cache.CachePolicy()),
		)
	}
	return s
}

// Params returns parameters for addr with the configured defaults
// applied first, then opts.
func (s *Setup) Params(addr address.Address, opts ...request.Option) *request.Parameters {
	all := make([]request.Option, 0, len(s.Options)+len(opts))
	all = append(all, s.Options...)
	all = append(all, opts...)
	return request.New(addr, all...)
}

// Close releases idle HTTP connections and closes the Redis tier, if
// any. It returns the first error encountered.
func (s *Setup) Close() error {
	s.Client.CloseIdleConnections()
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
