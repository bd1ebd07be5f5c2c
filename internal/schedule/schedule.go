// Package schedule runs deferred one-shot tasks on a single logical thread.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is a handle to a scheduled callback
type Task interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// Scheduler runs fn once after d
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// Timer schedules callbacks with real timers. When a timer expires the
// callback is handed to post, which must run it on the owner's event loop.
type Timer struct {
	post func(func())
	wg   sync.WaitGroup
}

// NewTimer creates a Timer. A nil post runs callbacks on the timer goroutine.
func NewTimer(post func(func())) *Timer {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &Timer{post: post}
}

type timerTask struct {
	timer *time.Timer
	done  func()
}

func (t *timerTask) Stop() bool {
	if t.timer.Stop() {
		t.done()
		return true
	}
	return false
}

// AfterFunc schedules fn to be posted after d
func (t *Timer) AfterFunc(d time.Duration, fn func()) Task {
	t.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(t.wg.Done) }

	task := &timerTask{done: done}
	task.timer = time.AfterFunc(d, func() {
		t.post(func() {
			defer done()
			fn()
		})
	})
	return task
}

// Wait blocks until every scheduled callback has run or been stopped.
func (t *Timer) Wait() {
	t.wg.Wait()
}

// Loop is a single-threaded run queue for posted callbacks
type Loop struct {
	queue chan func()
}

// NewLoop creates a loop whose queue holds up to size pending callbacks
func NewLoop(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{queue: make(chan func(), size)}
}

// Post enqueues fn. It blocks while the queue is full.
func (l *Loop) Post(fn func()) {
	l.queue <- fn
}

// Run executes posted callbacks in order until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
