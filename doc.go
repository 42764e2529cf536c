// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package nrequest turns declarative request descriptions into typed
results, running a plugin chain at fixed points around each exchange.

Describe a request with package request, then execute it with a Client
and one of the typed entry points:

	client := &nrequest.Client{}
	addr := address.New("api.example.com", address.WithPath("users", "42"))
	user, err := nrequest.Do[User](ctx, client, request.New(addr))
	...
	avatar, err := nrequest.DoImage(ctx, client, request.New(addr.Append("avatar")))
	...
	err = nrequest.DoIgnorable(ctx, client, request.New(addr,
		request.WithMethod(request.DELETE)))

The Do functions block until the result arrives. The Request functions
return an unstarted Task whose completion callback runs on a queue
instead:

	task := nrequest.Request(client, params, mainQueue, func(u User, err error) {
		...
	})
	task.Start()
	...
	task.Cancel()

For control over how the client sends HTTP requests and receives HTTP
responses, use a custom HTTPDoer. For example, use a GoLang standard
HTTP client:

	doer := &http.Client{
		..., // See package "net/http" for detailed documentation
	}
	client := &nrequest.Client{
		Transport: nrequest.DoerTransport{Doer: doer},
	}

To hook into the lifecycle of every exchange, add plugins to the
client's provider, or to the request parameters:

	client := &nrequest.Client{
		Provider: nrequest.NewProvider([]request.Plugin{
			&plugins.Bearer{Tokens: tokens},
		}, nrequest.DefaultProvider),
	}

Every exchange delivers exactly one result. Errors are an
*address.EncodingError when the request cannot be built, the transport
error (a *url.Error for DoerTransport) when the exchange fails, a
status.Code or plugin error when verification rejects the response, and
a *DecodeError when the payload does not fit the requested shape.
*/
package nrequest
