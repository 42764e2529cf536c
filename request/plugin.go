// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
)

// A Plugin observes an exchange at five fixed lifecycle stages. Every
// stage runs over the whole plugin list, in list order, before the next
// stage begins.
//
// Prepare may modify the request (add headers, sign it) and seed user
// info. WillSend sees the final request immediately before it is handed
// to the transport. DidReceive sees the raw result and may update user
// info. Verify is the only stage that can abort the exchange: the first
// plugin to return a non-nil error fails it. DidFinish observes the
// outcome together with the decoded value, which is nil if the exchange
// failed, and cannot change it.
//
// The same Plugin instance may be attached to many concurrent
// exchanges. Stateful plugins must synchronize their own state.
//
// Embed Base to get no-op implementations of the stages a plugin does
// not need.
type Plugin interface {
	Prepare(p *Parameters, r *http.Request, info *UserInfo)
	WillSend(p *Parameters, r *http.Request, info *UserInfo)
	DidReceive(p *Parameters, d *ResponseData, info *UserInfo)
	Verify(d *ResponseData, info *UserInfo) error
	DidFinish(p *Parameters, d *ResponseData, info *UserInfo, v interface{})
}

// Base implements every Plugin stage as a no-op.
type Base struct{}

// Prepare does nothing.
func (Base) Prepare(*Parameters, *http.Request, *UserInfo) {}

// WillSend does nothing.
func (Base) WillSend(*Parameters, *http.Request, *UserInfo) {}

// DidReceive does nothing.
func (Base) DidReceive(*Parameters, *ResponseData, *UserInfo) {}

// Verify accepts every response.
func (Base) Verify(*ResponseData, *UserInfo) error { return nil }

// DidFinish does nothing.
func (Base) DidFinish(*Parameters, *ResponseData, *UserInfo, interface{}) {}

// Funcs is an adapter to build a Plugin from ordinary functions. Nil
// fields are no-ops.
type Funcs struct {
	PrepareFunc    func(p *Parameters, r *http.Request, info *UserInfo)
	WillSendFunc   func(p *Parameters, r *http.Request, info *UserInfo)
	DidReceiveFunc func(p *Parameters, d *ResponseData, info *UserInfo)
	VerifyFunc     func(d *ResponseData, info *UserInfo) error
	DidFinishFunc  func(p *Parameters, d *ResponseData, info *UserInfo, v interface{})
}

// Prepare calls f.PrepareFunc, if set.
func (f *Funcs) Prepare(p *Parameters, r *http.Request, info *UserInfo) {
	if f.PrepareFunc != nil {
		f.PrepareFunc(p, r, info)
	}
}

// WillSend calls f.WillSendFunc, if set.
func (f *Funcs) WillSend(p *Parameters, r *http.Request, info *UserInfo) {
	if f.WillSendFunc != nil {
		f.WillSendFunc(p, r, info)
	}
}

// DidReceive calls f.DidReceiveFunc, if set.
func (f *Funcs) DidReceive(p *Parameters, d *ResponseData, info *UserInfo) {
	if f.DidReceiveFunc != nil {
		f.DidReceiveFunc(p, d, info)
	}
}

// Verify calls f.VerifyFunc, if set.
func (f *Funcs) Verify(d *ResponseData, info *UserInfo) error {
	if f.VerifyFunc != nil {
		return f.VerifyFunc(d, info)
	}
	return nil
}

// DidFinish calls f.DidFinishFunc, if set.
func (f *Funcs) DidFinish(p *Parameters, d *ResponseData, info *UserInfo, v interface{}) {
	if f.DidFinishFunc != nil {
		f.DidFinishFunc(p, d, info, v)
	}
}
