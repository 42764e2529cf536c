// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/nrequest/request"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A Transport performs the network exchange for one request.
//
// Execute must return promptly and call complete exactly once, on any
// goroutine, with the result of the exchange. The response body must
// already be buffered into ResponseData.Body. The transport should
// abandon the exchange when the request context is done.
//
// A Client tolerates a Transport that calls complete more than once:
// the first result wins and the others are reported on the client
// logger as contract violations.
type Transport interface {
	Execute(r *http.Request, complete func(*request.ResponseData))
}

// TransportFunc is an adapter to allow ordinary functions to be used as
// a Transport.
type TransportFunc func(r *http.Request, complete func(*request.ResponseData))

// Execute calls f(r, complete).
func (f TransportFunc) Execute(r *http.Request, complete func(*request.ResponseData)) {
	f(r, complete)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any idle which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
type IdleCloser interface {
	CloseIdleConnections()
}

// DoerTransport is a Transport that sends each request with an
// HTTPDoer on its own goroutine and buffers the whole response body.
//
// Whenever Err is set on the delivered ResponseData, it has the type
// *url.Error, whose Timeout method reports request timeouts. If the
// body read fails part of the way through, the partial body is kept in
// ResponseData.Body alongside the error.
type DoerTransport struct {
	// Doer sends the requests. If nil, http.DefaultClient from the
	// standard net/http package is used.
	Doer HTTPDoer
}

// Execute implements Transport.
func (t DoerTransport) Execute(r *http.Request, complete func(*request.ResponseData)) {
	go func() {
		complete(t.do(r))
	}()
}

// CloseIdleConnections invokes the same method on the underlying
// HTTPDoer. If the HTTPDoer has no CloseIdleConnections method, this
// method does nothing.
func (t DoerTransport) CloseIdleConnections() {
	if ic, ok := t.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (t DoerTransport) do(r *http.Request) *request.ResponseData {
	d := &request.ResponseData{
		Request: r,
		Start:   time.Now(),
	}
	resp, err := t.doer().Do(r)
	if err != nil {
		d.Err = urlErrorWrap(r, err)
	} else {
		d.Response = resp
		readBody(r, d)
	}
	d.End = time.Now()
	return d
}

func (t DoerTransport) doer() HTTPDoer {
	if t.Doer == nil {
		return http.DefaultClient
	}
	return t.Doer
}

func readBody(r *http.Request, d *request.ResponseData) {
	defer func() {
		_ = d.Response.Body.Close()
	}()
	var err error
	d.Body, err = io.ReadAll(d.Response.Body)
	if err != nil {
		d.Err = urlErrorWrap(r, err)
	}
}

func urlErrorWrap(r *http.Request, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(r.Method),
		URL: r.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
