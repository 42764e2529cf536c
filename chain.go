// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"net/http"

	"github.com/gogama/nrequest/request"
)

// A Chain is an ordered list of plugins. Each stage method runs the
// same stage on every plugin in list order, so a Chain is itself a
// request.Plugin and chains may be nested.
type Chain []request.Plugin

// NewChain builds a Chain from plugins. It panics if any plugin is nil.
func NewChain(plugins ...request.Plugin) Chain {
	c := make(Chain, 0, len(plugins))
	return c.PushBack(plugins...)
}

// PushBack returns a chain with plugins added to the back. The
// receiver's backing array is never shared with the result.
func (c Chain) PushBack(plugins ...request.Plugin) Chain {
	for _, p := range plugins {
		if p == nil {
			panic("nrequest: nil plugin")
		}
	}
	out := make(Chain, 0, len(c)+len(plugins))
	out = append(out, c...)
	return append(out, plugins...)
}

// Prepare runs the Prepare stage on every plugin.
func (c Chain) Prepare(p *request.Parameters, r *http.Request, info *request.UserInfo) {
	for _, plugin := range c {
		plugin.Prepare(p, r, info)
	}
}

// WillSend runs the WillSend stage on every plugin.
func (c Chain) WillSend(p *request.Parameters, r *http.Request, info *request.UserInfo) {
	for _, plugin := range c {
		plugin.WillSend(p, r, info)
	}
}

// DidReceive runs the DidReceive stage on every plugin.
func (c Chain) DidReceive(p *request.Parameters, d *request.ResponseData, info *request.UserInfo) {
	for _, plugin := range c {
		plugin.DidReceive(p, d, info)
	}
}

// Verify runs the Verify stage on each plugin until one of them returns
// an error, and returns that error.
func (c Chain) Verify(d *request.ResponseData, info *request.UserInfo) error {
	for _, plugin := range c {
		if err := plugin.Verify(d, info); err != nil {
			return err
		}
	}
	return nil
}

// DidFinish runs the DidFinish stage on every plugin.
func (c Chain) DidFinish(p *request.Parameters, d *request.ResponseData, info *request.UserInfo, v interface{}) {
	for _, plugin := range c {
		plugin.DidFinish(p, d, info, v)
	}
}
