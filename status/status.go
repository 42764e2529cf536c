// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package status maps HTTP status codes to typed errors.
//
// Verify is the single source of truth for turning a response status
// into success or a Code error. It is total and pure: every integer maps
// to some Code, and zero (no status, because no response arrived) is
// treated as success.
package status

import (
	"errors"
	"fmt"
)

// A Code is an HTTP status code that is not considered a success. It
// implements error, so it may be returned from a verification step and
// inspected by callers with errors.As or Is.
//
// The named constants cover the well-known codes. Any other code is
// still a valid Code, constructed with Other.
type Code int

const (
	// NoContent is status 204.
	NoContent Code = 204
	// BadRequest is status 400.
	BadRequest Code = 400
	// Unauthorized is status 401.
	Unauthorized Code = 401
	// NotFound is status 404.
	NotFound Code = 404
	// Timeout is status 408.
	Timeout Code = 408
	// UpgradeRequired is status 426.
	UpgradeRequired Code = 426
	// ServerError is status 500.
	ServerError Code = 500
)

var names = map[Code]string{
	NoContent:       "no content",
	BadRequest:      "bad request",
	Unauthorized:    "unauthorized",
	NotFound:        "not found",
	Timeout:         "timeout",
	UpgradeRequired: "upgrade required",
	ServerError:     "server error",
}

// Other returns the escape variant for a status code without a named
// constant.
func Other(code int) Code {
	return Code(code)
}

// FromInt maps an integer to its Code. The mapping is total.
func FromInt(code int) Code {
	return Code(code)
}

// Int returns the integer value of c. It is the exact inverse of
// FromInt.
func (c Code) Int() int {
	return int(c)
}

// Named reports whether c is one of the named constants rather than an
// Other variant.
func (c Code) Named() bool {
	_, ok := names[c]
	return ok
}

// String returns a readable name, for example "unauthorized" or
// "other(418)".
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("other(%d)", int(c))
}

func (c Code) Error() string {
	return fmt.Sprintf("nrequest/status: %s (%d)", c.String(), int(c))
}

// Verify maps a status code to success or a Code error.
//
// Zero means the exchange produced no HTTP status and is success at
// this layer, as is 200. Every other code is returned as its Code.
func Verify(code int) error {
	if code == 0 || code == 200 {
		return nil
	}
	return FromInt(code)
}

// Is reports whether err is, or wraps, the status Code c.
func Is(err error, c Code) bool {
	var code Code
	return errors.As(err, &code) && code == c
}
