// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gogama/nrequest/queue"
)

// A Task is a handle on one exchange. A Task does nothing until Start
// is called, and its completion callback fires exactly once, whether
// the exchange succeeds, fails or is canceled.
//
// The methods of Task are safe for concurrent use by multiple
// goroutines.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    func()
	abort  func()

	mu       sync.Mutex
	started  bool
	canceled bool

	stage int32
	once  sync.Once
	done  chan struct{}
}

func newTask(parent context.Context) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		ctx:    ctx,
		cancel: cancel,
		stage:  -1,
		done:   make(chan struct{}),
	}
}

// Start begins the exchange. The request is built and the Prepare and
// WillSend stages run on the calling goroutine, after which the request
// is handed to the transport and Start returns.
//
// Start has no effect if the task has already been started or
// canceled.
func (t *Task) Start() {
	t.mu.Lock()
	if t.started || t.canceled {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()
	t.run()
}

// Cancel cancels the exchange.
//
// If the request has not yet been handed to the transport, it never
// will be, and the completion callback receives ErrCanceled. If the
// request is already in flight, its context is canceled and the
// completion callback receives whatever the transport reports.
// Canceling a finished task has no effect.
func (t *Task) Cancel() {
	t.mu.Lock()
	if t.canceled {
		t.mu.Unlock()
		return
	}
	t.canceled = true
	started := t.started
	t.mu.Unlock()
	t.cancel()
	if !started {
		t.abort()
	}
}

// Done returns a channel that is closed after the completion callback
// has returned. If the completion queue drops work, Done is never
// closed.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Stage returns the most recent stage whose plugin pass has begun. The
// second return value is false if no stage has begun.
func (t *Task) Stage() (Stage, bool) {
	s := atomic.LoadInt32(&t.stage)
	return Stage(s), s >= 0
}

func (t *Task) enter(s Stage) {
	atomic.StoreInt32(&t.stage, int32(s))
}

// finish schedules deliver on q unless a delivery has already been
// scheduled. It reports whether deliver was scheduled.
func (t *Task) finish(q queue.Queue, deliver func()) bool {
	fired := false
	t.once.Do(func() {
		fired = true
		t.cancel()
		q.Schedule(func() {
			defer close(t.done)
			deliver()
		})
	})
	return fired
}
