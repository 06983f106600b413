package driver

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/isodom/internal/errors"
)

// DefaultLoopSize is the queue capacity used when NewLoop is given zero.
const DefaultLoopSize = 256

// Loop runs functions one at a time on the goroutine that calls Run.
// A Driver is not safe for concurrent use; code on other goroutines hands
// work to the driver through its Loop.
//
// Example:
//
//	loop := driver.NewLoop(0, logger)
//	go loop.Run(ctx)
//	loop.Do(func() {
//	    d.Dispatch(button, "click")
//	})
type Loop struct {
	queue  chan func()
	done   chan struct{}
	once   sync.Once
	closed atomic.Bool
	logger *slog.Logger
}

// NewLoop creates a loop with a queue of size callbacks.
func NewLoop(size int, logger *slog.Logger) *Loop {
	if size <= 0 {
		size = DefaultLoopSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Do queues fn without blocking. It reports false when the loop is closed
// or the queue is full.
func (l *Loop) Do(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	default:
		l.logger.Warn("loop queue full, discarding callback")
		return false
	}
}

// Call queues fn and waits until it has run. It fails with E104 when the loop
// closes first, or with the context's error. An error means fn did not run and
// never will; once fn has started, Call waits for it and returns nil.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	var state atomic.Int32
	finished := make(chan struct{})
	wrapped := func() {
		if !state.CompareAndSwap(callQueued, callStarted) {
			return
		}
		defer close(finished)
		fn()
	}
	if l.closed.Load() {
		return errors.New("E104").WithDetail("loop closed")
	}
	select {
	case l.queue <- wrapped:
	case <-l.done:
		return errors.New("E104").WithDetail("loop closed")
	case <-ctx.Done():
		return ctx.Err()
	}

	var err error
	select {
	case <-finished:
		return nil
	case <-l.done:
		err = errors.New("E104").WithDetail("loop closed")
	case <-ctx.Done():
		err = ctx.Err()
	}
	if state.CompareAndSwap(callQueued, callAbandoned) {
		return err
	}
	<-finished
	return nil
}

const (
	callQueued int32 = iota
	callStarted
	callAbandoned
)

// Run executes queued callbacks until ctx is cancelled or Close is called.
// A panicking callback is logged and does not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.queue:
			l.safeRun(fn)
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		}
	}
}

func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Close stops the loop. Queued callbacks that have not started are dropped.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
