// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package address builds request targets.

An Address is either an opaque pre-built URL or a structured
representation of scheme, host, port, path segments and query items:

	a := address.New("api.example.com",
		address.WithPath("signin", "v1.0"),
		address.WithQuery(address.QueryItems{"user": "foo"}))
	u, err := a.URL(true) // https://api.example.com/signin/v1.0/?user=foo

Rendering always re-parses the produced URL and checks its host against
the host that was supplied. A mismatch, which URL libraries can produce
silently when a scheme is malformed, is reported as an EncodingError
with reason LackAddress.
*/
package address
