// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package plugins provides ready-made request plugins.

StatusCode maps response status codes to status.Code errors during the
Verify stage. It is part of the default provider of every client.

Bearer attaches OAuth bearer tokens, RequestID stamps each request with a
unique identifier, Logger records the exchange lifecycle on a zerolog
logger, Tracing wraps each exchange in an OpenTelemetry client span, and
Header adds static headers.

Attach plugins per request, or to every request of a client through its
provider:

	provider := nrequest.NewProvider([]request.Plugin{
		&plugins.RequestID{},
		&plugins.Tracing{},
	}, nrequest.DefaultProvider)
	client := &nrequest.Client{Provider: provider}
*/
package plugins
