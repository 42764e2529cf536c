// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugins

import (
	"net/http"

	"github.com/gogama/nrequest/request"
)

// Header is a plugin that adds static headers to every request during
// the Prepare stage. Headers already present on the request are left
// alone, so per-request headers take precedence.
type Header struct {
	request.Base
	Header http.Header
}

// Prepare implements request.Plugin.
func (h *Header) Prepare(_ *request.Parameters, r *http.Request, _ *request.UserInfo) {
	for k, vs := range h.Header {
		if _, ok := r.Header[http.CanonicalHeaderKey(k)]; ok {
			continue
		}
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
}
