// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"golang.org/x/net/http/httpguts"
)

// A Method is an HTTP request method. The empty Method means GET.
type Method string

// Well-known methods. Any other valid RFC 7230 token is also accepted
// as an extension method.
const (
	GET     Method = "GET"
	HEAD    Method = "HEAD"
	POST    Method = "POST"
	PUT     Method = "PUT"
	PATCH   Method = "PATCH"
	DELETE  Method = "DELETE"
	OPTIONS Method = "OPTIONS"
	CONNECT Method = "CONNECT"
	TRACE   Method = "TRACE"
)

// String returns the method name, mapping the empty Method to "GET".
func (m Method) String() string {
	if m == "" {
		return string(GET)
	}
	return string(m)
}

// Valid reports whether m is empty or a valid token as defined in
// https://tools.ietf.org/html/rfc7230#section-3.2.6.
func (m Method) Valid() bool {
	return m == "" || httpguts.ValidHeaderFieldName(string(m))
}
