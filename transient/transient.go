// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the transport failure category of an error, as reported
// by Categorize.
//
// Not means the error is either nil or not one of the recognized
// transport failures. Canceled is not transient in the retry sense: the
// exchange was abandoned on purpose. The remaining categories indicate
// that repeating the exchange has some prospect of success.
type Category int

const (
	// Not indicates a nil error or any unrecognized error.
	Not Category = iota
	// Timeout indicates a client-side timeout. Categorize returns
	// Timeout if the error or any of its wrapped causes has a Timeout
	// method that reports true, or is context.DeadlineExceeded.
	Timeout
	// Canceled indicates the exchange was cancelled before it could
	// complete, because its context was cancelled or its task handle
	// was cancelled. Categorize returns Canceled if the error wraps
	// context.Canceled.
	Canceled
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED). It is frequent while a service restarts.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// connection (syscall.ECONNRESET), typically a load balancer or a
	// server going down mid-response.
	ConnReset
)

var categoryNames = []string{
	"not",
	"timeout",
	"canceled",
	"conn_refused",
	"conn_reset",
}

// String returns a short snake-case name for the category, suitable
// for log fields and span attributes.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Categorize returns the category of err, looking through wrapped
// causes. A timeout takes precedence over every other category.
//
// Categorize never checks for a Temporary method, as the semantics of
// Temporary are not well defined.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

// Retryable reports whether err falls into a category where repeating
// the exchange may succeed.
func Retryable(err error) bool {
	switch Categorize(err) {
	case Timeout, ConnRefused, ConnReset:
		return true
	default:
		return false
	}
}

type hasTimeout interface {
	Timeout() bool
}
