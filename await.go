// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"context"
	"image"
	"sync"

	"github.com/gogama/nrequest/queue"
	"github.com/gogama/nrequest/request"
)

type result[T any] struct {
	v   T
	err error
}

// Await starts the task returned by start and blocks until the task
// delivers its result or ctx is done, whichever happens first.
//
// The start function must return an unstarted Task whose completion
// callback is the done function it is given. Await resumes exactly
// once: a second invocation of done is dropped. If ctx ends first, the
// task is canceled and ctx.Err() is returned. A failure delivered after
// ctx ended is also reported as ctx.Err().
func Await[T any](ctx context.Context, start func(done func(T, error)) *Task) (T, error) {
	if ctx == nil {
		panic("nrequest: nil context")
	}
	ch := make(chan result[T], 1)
	var once sync.Once
	t := start(func(v T, err error) {
		once.Do(func() {
			ch <- result[T]{v, err}
		})
	})
	t.Start()
	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() != nil {
			return r.v, ctx.Err()
		}
		return r.v, r.err
	case <-ctx.Done():
		t.Cancel()
		var zero T
		return zero, ctx.Err()
	}
}

// Do runs the exchange described by p and returns the response body
// decoded into a T. The exchange's context derives from ctx. See
// Execute and Await.
func Do[T any](ctx context.Context, c *Client, p *request.Parameters) (T, error) {
	return Await(ctx, func(done func(T, error)) *Task {
		return Request(c, bind(ctx, p), queue.Inline, done)
	})
}

// DoOptional runs the exchange described by p and returns the response
// body decoded into a T, or nil for an empty body.
func DoOptional[T any](ctx context.Context, c *Client, p *request.Parameters) (*T, error) {
	return Await(ctx, func(done func(*T, error)) *Task {
		return RequestOptional(c, bind(ctx, p), queue.Inline, done)
	})
}

// DoData runs the exchange described by p and returns the raw response
// body.
func DoData(ctx context.Context, c *Client, p *request.Parameters) ([]byte, error) {
	return Await(ctx, func(done func([]byte, error)) *Task {
		return RequestData(c, bind(ctx, p), queue.Inline, done)
	})
}

// DoImage runs the exchange described by p and returns the response
// body decoded as an image.
func DoImage(ctx context.Context, c *Client, p *request.Parameters) (image.Image, error) {
	return Await(ctx, func(done func(image.Image, error)) *Task {
		return RequestImage(c, bind(ctx, p), queue.Inline, done)
	})
}

// DoIgnorable runs the exchange described by p and discards the
// response body.
func DoIgnorable(ctx context.Context, c *Client, p *request.Parameters) error {
	_, err := Await(ctx, func(done func(struct{}, error)) *Task {
		return Execute(c, bind(ctx, p), queue.Inline, Ignorable, done)
	})
	return err
}

// bind gives p the caller's context. Nil parameters are passed through
// so that Execute reports them.
func bind(ctx context.Context, p *request.Parameters) *request.Parameters {
	if p == nil {
		return nil
	}
	return p.WithContext(ctx)
}
