// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"github.com/gogama/nrequest/plugins"
	"github.com/gogama/nrequest/request"
)

// A Provider supplies the plugins a Client runs ahead of the plugins
// carried by the request parameters.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Provider interface {
	Plugins() []request.Plugin
}

// ProviderFunc is an adapter to allow ordinary functions to be used as
// a Provider.
type ProviderFunc func() []request.Plugin

// Plugins calls f().
func (f ProviderFunc) Plugins() []request.Plugin {
	return f()
}

// DefaultProvider is the provider used by a Client whose Provider is
// nil. It contributes the status code verifier, so that any response
// status other than 200 fails the exchange with a status.Code error.
//
// A Client with a custom Provider only maps status codes if that
// provider, or one nested in it, includes plugins.StatusCode.
var DefaultProvider Provider = NewProvider([]request.Plugin{plugins.StatusCode()})

type composite struct {
	own    []request.Plugin
	nested []Provider
}

// NewProvider returns a Provider whose plugin list is own followed by
// the plugin lists of the nested providers, in order. The nested
// providers are consulted each time Plugins is called.
func NewProvider(own []request.Plugin, nested ...Provider) Provider {
	for _, p := range own {
		if p == nil {
			panic("nrequest: nil plugin")
		}
	}
	for _, n := range nested {
		if n == nil {
			panic("nrequest: nil provider")
		}
	}
	return &composite{
		own:    append([]request.Plugin(nil), own...),
		nested: append([]Provider(nil), nested...),
	}
}

func (c *composite) Plugins() []request.Plugin {
	out := make([]request.Plugin, 0, len(c.own))
	out = append(out, c.own...)
	for _, n := range c.nested {
		out = append(out, n.Plugins()...)
	}
	return out
}
