// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugins

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gogama/nrequest/request"
)

// DefaultRequestIDHeader is the header used by RequestID when its
// Header field is empty.
const DefaultRequestIDHeader = "X-Request-ID"

// RequestIDKey is the user info key under which RequestID stores the
// identifier of the exchange.
type RequestIDKey struct{}

// RequestID is a plugin that stamps every request with a unique
// identifier during the Prepare stage. A request that already carries
// the header keeps its identifier.
type RequestID struct {
	request.Base
	// Header is the request header to set. Defaults to
	// DefaultRequestIDHeader.
	Header string
}

// Prepare implements request.Plugin.
func (p *RequestID) Prepare(_ *request.Parameters, r *http.Request, info *request.UserInfo) {
	h := p.Header
	if h == "" {
		h = DefaultRequestIDHeader
	}
	id := r.Header.Get(h)
	if id == "" {
		id = uuid.New().String()
		r.Header.Set(h, id)
	}
	info.Set(RequestIDKey{}, id)
}

// ExchangeID returns the identifier RequestID assigned to an exchange.
func ExchangeID(info *request.UserInfo) (string, bool) {
	return request.Get[string](info, RequestIDKey{})
}
