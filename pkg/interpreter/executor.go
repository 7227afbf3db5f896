package interpreter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"jscr/interpreter-go/pkg/runtime"
)

// Task is a unit of work run by an Executor.
type Task func(ctx context.Context) (runtime.Value, error)

// Executor abstracts where asynchronous executions run.
type Executor interface {
	Run(ctx context.Context, task Task) *Handle
	PendingTasks() int
}

// Handle tracks one asynchronous execution.
type Handle struct {
	ID uuid.UUID

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	value  runtime.Value
	err    error
}

func newHandle(cancel context.CancelFunc) *Handle {
	return &Handle{
		ID:     uuid.New(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (h *Handle) resolve(value runtime.Value, err error) {
	h.once.Do(func() {
		h.value = value
		h.err = err
		close(h.done)
	})
}

// Await blocks until the execution finishes.
func (h *Handle) Await() (runtime.Value, error) {
	<-h.done
	return h.value, h.err
}

// Done is closed once the execution has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel requests that the execution stop before its next top-level
// statement.
func (h *Handle) Cancel() {
	if h.cancel != nil {
		h.cancel()
	}
}

func safeInvoke(ctx context.Context, task Task) (result runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

// GoroutineExecutor runs each task on its own goroutine.
type GoroutineExecutor struct {
	pending atomic.Int64
}

func NewGoroutineExecutor() *GoroutineExecutor {
	return &GoroutineExecutor{}
}

func (e *GoroutineExecutor) Run(ctx context.Context, task Task) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	handle := newHandle(cancel)
	e.pending.Add(1)
	go func() {
		defer e.pending.Add(-1)
		defer cancel()
		handle.resolve(safeInvoke(ctx, task))
	}()
	return handle
}

func (e *GoroutineExecutor) PendingTasks() int {
	pending := e.pending.Load()
	if pending < 0 {
		return 0
	}
	return int(pending)
}

// SerialExecutor runs tasks to completion on the caller's goroutine before
// Run returns, giving deterministic ordering in tests and the REPL.
type SerialExecutor struct{}

func NewSerialExecutor() *SerialExecutor {
	return &SerialExecutor{}
}

func (SerialExecutor) Run(ctx context.Context, task Task) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	handle := newHandle(cancel)
	handle.resolve(safeInvoke(ctx, task))
	return handle
}

func (SerialExecutor) PendingTasks() int { return 0 }
