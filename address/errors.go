// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package address

import (
	"errors"
	"fmt"
)

// A Reason classifies why a request could not be constructed.
type Reason int

const (
	// LackAddress indicates the address could not be rendered into a
	// URL whose host matches the host that was supplied.
	LackAddress Reason = iota
	// InvalidBody indicates the request body could not be encoded.
	InvalidBody
	// InvalidMethod indicates the HTTP method is not a valid token.
	InvalidMethod
)

var reasonNames = []string{
	"lack address",
	"invalid body",
	"invalid method",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// An EncodingError is returned when a request could not be constructed.
// It is fatal to the exchange and never retried.
type EncodingError struct {
	Reason Reason
	// Target is the offending input, such as the host or method.
	Target string
	Err    error
}

// ErrLackAddress matches any EncodingError with reason LackAddress when
// used with errors.Is.
var ErrLackAddress = &EncodingError{Reason: LackAddress}

var errEmptyHost = errors.New("empty host")

func (e *EncodingError) Error() string {
	msg := "nrequest/address: " + e.Reason.String()
	if e.Target != "" {
		msg += fmt.Sprintf(" %q", e.Target)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an EncodingError with the same reason.
func (e *EncodingError) Is(target error) bool {
	t, ok := target.(*EncodingError)
	return ok && t.Reason == e.Reason
}

func lackAddress(host string, err error) error {
	return &EncodingError{Reason: LackAddress, Target: host, Err: err}
}
