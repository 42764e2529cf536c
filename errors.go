// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"errors"
)

var (
	// ErrCanceled is delivered when a Task is canceled before its
	// request reaches the transport. A cancellation after dispatch is
	// reported by the transport, typically as a *url.Error wrapping
	// context.Canceled.
	ErrCanceled = errors.New("nrequest: canceled before dispatch")

	// ErrCacheMiss is delivered when the cache policy is
	// request.ReturnCacheDataDontLoad and the cache has no entry for
	// the request.
	ErrCacheMiss = errors.New("nrequest: cache miss")

	// ErrEmptyBody is wrapped in a DecodeError when a shape that
	// requires a payload receives an empty body.
	ErrEmptyBody = errors.New("nrequest: empty body")

	errNoResponseData = errors.New("nrequest: transport completed without response data")
)

// A DecodeError is delivered when the response passed verification but
// its payload could not be converted into the requested shape. It is
// distinct from status and plugin errors so that callers can tell an
// unexpected response shape from a rejected response.
type DecodeError struct {
	// Shape names the response shape, for example "decodable".
	Shape string
	Err   error
}

func (e *DecodeError) Error() string {
	return "nrequest: decode " + e.Shape + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
