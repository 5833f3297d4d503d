package executor

import (
	"errors"
	"sync"
)

// ErrSpawnOutsideWorker is returned by SpawnLocal when called with a
// Context that wasn't handed down from a running worker — e.g. one zero-
// valued outside Run, rather than the Context a Future receives from Poll.
var ErrSpawnOutsideWorker = errors.New("executor: spawn_local called outside a worker context")

// Outcome is what awaiting a TaskHandle yields: either the task's own
// result, or notice that it was cancelled before producing one.
type Outcome[T any] struct {
	Value     T
	Cancelled bool
}

// runnable is the type-erased task the scheduler's ready queue holds —
// analogous to pipeline's erasedHandler, but for tasks instead of handlers.
type runnable interface {
	run()
}

type task[T any] struct {
	mu              sync.Mutex
	fut             Future[T]
	waker           *Waker
	worker          *Worker
	done            bool
	cancelRequested bool
	cancelled       bool
	detached        bool
	result          T
	waiters         []*Waker
}

func (t *task[T]) run() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	if t.cancelRequested {
		t.mu.Unlock()
		var zero T
		t.complete(zero, true)
		return
	}
	t.mu.Unlock()

	cx := &Context{waker: t.waker, worker: t.worker}
	v, ready := t.fut.Poll(cx).Unwrap()
	if ready {
		t.complete(v, false)
	}
}

func (t *task[T]) complete(result T, cancelled bool) {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	t.result = result
	t.cancelled = cancelled
	waiters := t.waiters
	t.waiters = nil
	t.mu.Unlock()

	for _, w := range waiters {
		w.Wake()
	}
}

func (t *task[T]) addWaiter(w *Waker) {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		w.Wake()
		return
	}
	t.waiters = append(t.waiters, w)
	t.mu.Unlock()
}

// TaskHandle is the caller's handle to a spawned task: awaitable as a
// Future, plus detach and cancel.
type TaskHandle[T any] struct {
	task *task[T]
	ex   *LocalExecutor
}

// Poll makes TaskHandle itself a Future[Outcome[T]], so awaiting a task from
// inside another task is just nesting one more Poll call.
func (h TaskHandle[T]) Poll(cx *Context) Poll[Outcome[T]] {
	h.task.mu.Lock()
	if h.task.done {
		result, cancelled := h.task.result, h.task.cancelled
		h.task.mu.Unlock()
		return Ready(Outcome[T]{Value: result, Cancelled: cancelled})
	}
	h.task.mu.Unlock()
	h.task.addWaiter(cx.Waker())
	return Pending[Outcome[T]]()
}

// Detach lets the task continue running independent of this handle. It
// exists for parity with the handle surface spec.md names; in Go, letting
// a TaskHandle go out of scope already has no effect on the task (there is
// no drop-cancels-on-scope-exit to opt out of), so Detach is a marker for
// callers and introspection rather than a behavior change.
func (h TaskHandle[T]) Detach() {
	h.task.mu.Lock()
	h.task.detached = true
	h.task.mu.Unlock()
}

// Cancel requests cooperative cancellation. The task is dropped without
// completing at its next scheduling point rather than immediately; a task
// already in the middle of running to completion still finishes that run.
func (h TaskHandle[T]) Cancel() {
	h.task.mu.Lock()
	h.task.cancelRequested = true
	h.task.mu.Unlock()
	h.ex.enqueue(h.task)
}

// Detached reports whether Detach has been called, for introspection.
func (h TaskHandle[T]) Detached() bool {
	h.task.mu.Lock()
	defer h.task.mu.Unlock()
	return h.task.detached
}

// SpawnLocal schedules fut as a new task on cx's worker and returns a
// handle to it. cx must come from a Future currently being polled by a
// running executor (i.e. the Context a Poll method received) — a nil or
// zero Context fails with ErrSpawnOutsideWorker instead of panicking,
// matching spec.md's "executor misuse" error class. A Context kept after its
// executor's Run has returned is not detected: the task is enqueued on that
// executor and is never polled.
func SpawnLocal[T any](cx *Context, fut Future[T]) (TaskHandle[T], error) {
	if cx == nil || cx.worker == nil || cx.worker.ex == nil {
		return TaskHandle[T]{}, ErrSpawnOutsideWorker
	}
	return spawnOn(cx.worker.ex, fut), nil
}

func spawnOn[T any](ex *LocalExecutor, fut Future[T]) TaskHandle[T] {
	t := &task[T]{fut: fut, worker: &Worker{ex: ex}}
	t.waker = ex.newWaker(t)
	ex.enqueue(t)
	return TaskHandle[T]{task: t, ex: ex}
}
