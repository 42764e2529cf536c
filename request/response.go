// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"

	"github.com/gogama/nrequest/transient"
)

// ResponseData is the raw result of one transport exchange.
//
// Plugins receive ResponseData during the DidReceive, Verify and
// DidFinish stages. They may read it freely, and DidReceive plugins may
// make reasonable changes, for example unzipping Body, but they should
// leave the other fields alone.
type ResponseData struct {
	// Request is the HTTP request that was sent, after all Prepare
	// plugins ran.
	Request *http.Request

	// Response is the HTTP response, if one arrived. Its body has
	// already been read into Body and closed.
	Response *http.Response

	// Body is the buffered response payload. It is nil if no response
	// arrived.
	//
	// Body and Err may both be non-nil if the transport failed part of
	// the way through reading the body. The pipeline never decodes Body
	// when Err is set.
	Body []byte

	// Err is the transport failure, if any. Whenever Err is set by the
	// built-in transport, it has the type *url.Error.
	Err error

	// FromCache is true if Body was served from the response cache
	// instead of the transport. Response is nil in that case.
	FromCache bool

	// Start is the time the request was handed to the transport, or the
	// time of the cache lookup for cached responses.
	Start time.Time

	// End is the time the transport delivered the result.
	End time.Time
}

// StatusCode returns the HTTP status of the response. Zero is returned
// if there was no response. A response served from cache reports 200.
func (d *ResponseData) StatusCode() int {
	if d.Response != nil {
		return d.Response.StatusCode
	}
	if d.FromCache {
		return http.StatusOK
	}
	return 0
}

// Header returns the HTTP response headers, or a nil header if there
// was no response. A nil header is safe for read-only use.
func (d *ResponseData) Header() http.Header {
	if d.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}
	return d.Response.Header
}

// Started indicates whether the exchange has been dispatched.
func (d *ResponseData) Started() bool {
	return !d.Start.IsZero()
}

// Ended indicates whether the exchange has completed.
func (d *ResponseData) Ended() bool {
	return !d.End.IsZero()
}

// Duration returns the exchange duration. If the exchange has not
// started, zero is returned. If it has started but not ended, the
// elapsed time since Start is returned.
func (d *ResponseData) Duration() time.Duration {
	if !d.Started() {
		return time.Duration(0)
	}
	if !d.Ended() {
		return time.Since(d.Start)
	}
	return d.End.Sub(d.Start)
}

// Timeout indicates whether Err is a timeout.
func (d *ResponseData) Timeout() bool {
	return transient.Categorize(d.Err) == transient.Timeout
}

// Category returns the transient category of Err.
func (d *ResponseData) Category() transient.Category {
	return transient.Categorize(d.Err)
}
