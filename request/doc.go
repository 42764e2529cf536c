// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types shared by the request pipeline
and its plugins: Parameters (describes one request), ResponseData
(describes the raw result of one transport exchange), UserInfo (the
per-exchange metadata bag) and Plugin (the lifecycle observer).

The first core type is Parameters, an immutable snapshot of everything
needed to build and route one request: the address, method, headers,
body, timeout, cache settings, response queue, plugins, logging flag,
seed user info and codec.

	p := request.New(address.New("api.example.com", address.WithPath("users")),
		request.WithMethod(request.POST),
		request.WithBody(request.Encode(user)),
		request.WithTimeout(10*time.Second))

Parameters are constructed once per call site and never modified
afterwards. AddPlugins returns a new Parameters with the given plugins
appended, leaving the original untouched.

The second core type is ResponseData, which holds the HTTP request that
was sent, the response (if one arrived), the buffered body and the
transport error (if any). ResponseData is handed to plugins during the
receive, verify and finish stages of an exchange.

Plugins observe an exchange at five fixed points. Embed Base to get
no-op behavior for the stages a plugin does not care about, or use
Funcs to build a plugin from plain functions.
*/
package request
