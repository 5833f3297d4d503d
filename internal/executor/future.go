// Package executor implements a single-threaded cooperative scheduler: one
// OS thread hosts many tasks, none of which are ever run concurrently with
// each other. There is no work-stealing and no preemption — a task only
// yields control at an explicit suspension point, the same non-goal the
// pipeline package holds for handler callbacks.
package executor

// Poll is the result of polling a Future once: either it produced a value
// or it didn't finish yet. There is no error variant — a Future that can
// fail should carry the failure inside T, the same way a handler reports
// errors through its own message types rather than a framework-level one.
type Poll[T any] struct {
	value T
	ready bool
}

// Ready wraps a completed value.
func Ready[T any](v T) Poll[T] { return Poll[T]{value: v, ready: true} }

// Pending reports that the Future has not produced a value on this poll.
func Pending[T any]() Poll[T] {
	var zero T
	return Poll[T]{value: zero, ready: false}
}

// Unwrap returns the value and whether it's actually ready.
func (p Poll[T]) Unwrap() (T, bool) { return p.value, p.ready }

// Future is a unit of suspendable work. Poll is called repeatedly by the
// executor; a Future must not block — it either returns Ready immediately
// or records cx.Waker() somewhere that will call Wake() once it can make
// progress, then returns Pending.
type Future[T any] interface {
	Poll(cx *Context) Poll[T]
}

// FutureFunc adapts a plain function to Future, the same shape
// http.HandlerFunc gives handler functions.
type FutureFunc[T any] func(cx *Context) Poll[T]

func (f FutureFunc[T]) Poll(cx *Context) Poll[T] { return f(cx) }

// Waker lets a suspended Future ask the executor to poll it again. It is
// safe to call Wake from any goroutine — a timer, an I/O completion
// callback, or another task's cleanup — even though the executor itself
// only ever runs one task at a time on its own thread.
type Waker struct {
	wake func()
}

// Wake schedules the task this waker belongs to for another poll. Calling
// Wake more than once before the task is next polled collapses to a single
// re-schedule.
func (w *Waker) Wake() {
	if w != nil && w.wake != nil {
		w.wake()
	}
}

// Context is handed to a Future on every Poll call. It carries this task's
// Waker and a handle to the worker running it, the latter needed to spawn
// further tasks — see SpawnLocal.
type Context struct {
	waker  *Waker
	worker *Worker
}

// Waker returns the waker for the task currently being polled.
func (c *Context) Waker() *Waker { return c.waker }

// Worker returns the worker context this task is running under. Futures
// that need to spawn child tasks pass this Context (not just the Worker)
// to SpawnLocal.
func (c *Context) Worker() *Worker { return c.worker }
