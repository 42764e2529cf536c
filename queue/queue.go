// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package queue provides execution contexts onto which the request
// pipeline schedules result delivery.
//
// The pipeline only ever calls Schedule and never blocks on the queue.
// Inline (the default) runs callbacks on whichever goroutine completed
// the exchange, Async gives each callback its own goroutine, and Serial
// runs callbacks one at a time, in order, on a dedicated goroutine, much
// like a UI main queue.
package queue

import (
	"sync"
)

// A Queue schedules work onto an execution context.
//
// Implementations must be safe for concurrent use by multiple
// goroutines, and must run every scheduled function exactly once unless
// the queue has been shut down.
type Queue interface {
	Schedule(work func())
}

// Func is an adapter to allow ordinary functions to be used as a Queue.
type Func func(work func())

// Schedule calls f(work).
func (f Func) Schedule(work func()) {
	f(work)
}

type inline struct{}

func (inline) Schedule(work func()) {
	work()
}

type async struct{}

func (async) Schedule(work func()) {
	go work()
}

// Inline is a Queue that runs work immediately on the calling goroutine.
var Inline Queue = inline{}

// Async is a Queue that runs each piece of work on a new goroutine.
var Async Queue = async{}

// Default is the queue used when neither the request parameters nor
// the caller name one.
var Default = Inline

// A Serial queue runs scheduled work one item at a time, in FIFO order,
// on a single goroutine that it owns. The zero value is not usable; use
// NewSerial.
//
// Work scheduled after Close is silently discarded. Close waits for
// already scheduled work to finish.
type Serial struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	done    chan struct{}
}

// NewSerial starts a Serial queue.
func NewSerial() *Serial {
	s := &Serial{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// Schedule appends work to the queue. It never blocks on the work
// itself.
func (s *Serial) Schedule(work func()) {
	if work == nil {
		panic("nrequest/queue: nil work")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = append(s.pending, work)
	s.cond.Signal()
}

// Close stops accepting work and waits until all previously scheduled
// work has run. It is safe to call Close more than once.
func (s *Serial) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Signal()
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Serial) loop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		work := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.mu.Unlock()
		work()
	}
}
