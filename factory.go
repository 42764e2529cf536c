// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"errors"
	"image"

	"github.com/gogama/nrequest/queue"
	"github.com/gogama/nrequest/request"
)

// Execute returns an unstarted Task that runs the exchange described by
// p through c and converts the verified response with shape.
//
// The request goes to p.Address; use p.WithAddress to target another
// address with the same parameters. The done callback is called exactly
// once, on q, or on p.Queue if q is nil, or on queue.Default if both are
// nil. It receives either the decoded value and a nil error, or the
// zero value and the error that ended the exchange:
//
// • an *address.EncodingError if the request could not be built;
//
// • the transport error, unchanged, if the transport failed;
//
// • ErrCanceled or ErrCacheMiss;
//
// • the first error returned by a Verify plugin, which is a status.Code
// for the built-in status verifier;
//
// • a *DecodeError if shape could not convert the payload.
func Execute[T any](c *Client, p *request.Parameters, q queue.Queue, shape Shape[T], done func(T, error)) *Task {
	if c == nil {
		panic("nrequest: nil client")
	}
	if shape == nil {
		panic("nrequest: nil shape")
	}
	if done == nil {
		panic("nrequest: nil completion")
	}
	decode := func(d *request.ResponseData) (interface{}, error) {
		v, err := shape.Decode(d, p)
		if err != nil {
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				err = &DecodeError{Shape: shape.Name(), Err: err}
			}
			return nil, err
		}
		return v, nil
	}
	deliver := func(v interface{}, err error) {
		if err != nil {
			var zero T
			done(zero, err)
			return
		}
		t, _ := v.(T)
		done(t, nil)
	}
	return c.newTask(p, q, decode, deliver)
}

// Request returns an unstarted Task that decodes the response body into
// a T. See Execute.
func Request[T any](c *Client, p *request.Parameters, q queue.Queue, done func(T, error)) *Task {
	return Execute(c, p, q, Decodable[T](), done)
}

// RequestOptional returns an unstarted Task that decodes the response
// body into a T, delivering nil for an empty body. See Execute.
func RequestOptional[T any](c *Client, p *request.Parameters, q queue.Queue, done func(*T, error)) *Task {
	return Execute(c, p, q, Optional[T](), done)
}

// RequestData returns an unstarted Task that delivers the raw response
// body. See Execute.
func RequestData(c *Client, p *request.Parameters, q queue.Queue, done func([]byte, error)) *Task {
	return Execute(c, p, q, Data, done)
}

// RequestImage returns an unstarted Task that decodes the response body
// as an image. See Execute.
func RequestImage(c *Client, p *request.Parameters, q queue.Queue, done func(image.Image, error)) *Task {
	return Execute(c, p, q, Image, done)
}

// RequestIgnorable returns an unstarted Task that discards the response
// body. See Execute.
func RequestIgnorable(c *Client, p *request.Parameters, q queue.Queue, done func(error)) *Task {
	return Execute(c, p, q, Ignorable, func(_ struct{}, err error) {
		done(err)
	})
}
