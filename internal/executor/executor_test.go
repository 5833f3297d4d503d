package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

// immediate is a Future that's ready on its first poll.
type immediate[T any] struct{ v T }

func (f immediate[T]) Poll(*Context) Poll[T] { return Ready(f.v) }

func TestRun_ImmediateFutureReturnsItsValue(t *testing.T) {
	ex := NewBuilder().Build()
	got := Run[int](ex, immediate[int]{v: 42})
	assert.Equal(t, 42, got)
}

// countdown polls Pending n times, waking itself each time, before
// resolving to "done" — a toy stand-in for a Future waiting on some
// external readiness source.
type countdown struct{ remaining int }

func (c *countdown) Poll(cx *Context) Poll[string] {
	if c.remaining <= 0 {
		return Ready("done")
	}
	c.remaining--
	cx.Waker().Wake()
	return Pending[string]()
}

func TestRun_PendingFutureIsRepolledUntilReady(t *testing.T) {
	ex := NewBuilder().Build()
	got := Run[string](ex, &countdown{remaining: 5})
	assert.Equal(t, "done", got)
}

// spawnsChild spawns one child task and awaits it, verifying SpawnLocal and
// TaskHandle.Poll compose inside another Future's Poll.
type spawnsChild struct {
	handle *TaskHandle[int]
}

func (f *spawnsChild) Poll(cx *Context) Poll[int] {
	if f.handle == nil {
		h, err := SpawnLocal[int](cx, immediate[int]{v: 7})
		if err != nil {
			panic(err)
		}
		f.handle = &h
	}
	outcome, ready := f.handle.Poll(cx).Unwrap()
	if !ready {
		return Pending[int]()
	}
	return Ready(outcome.Value)
}

func TestRun_SpawnLocalAndAwaitChildTask(t *testing.T) {
	ex := NewBuilder().Build()
	got := Run[int](ex, &spawnsChild{})
	assert.Equal(t, 7, got)
}

func TestSpawnLocal_OutsideWorkerFails(t *testing.T) {
	_, err := SpawnLocal[int](&Context{}, immediate[int]{v: 1})
	assert.ErrorIs(t, err, ErrSpawnOutsideWorker)
}

func TestSpawnLocal_NilContextFails(t *testing.T) {
	_, err := SpawnLocal[int](nil, immediate[int]{v: 1})
	assert.ErrorIs(t, err, ErrSpawnOutsideWorker)
}

// neverReady never completes on its own; used to exercise Cancel.
type neverReady struct{}

func (neverReady) Poll(*Context) Poll[int] { return Pending[int]() }

// awaitsCancelledChild spawns a task, cancels it immediately, then awaits
// the cancellation outcome.
type awaitsCancelledChild struct {
	handle *TaskHandle[int]
}

func (f *awaitsCancelledChild) Poll(cx *Context) Poll[Outcome[int]] {
	if f.handle == nil {
		h, err := SpawnLocal[int](cx, neverReady{})
		if err != nil {
			panic(err)
		}
		h.Cancel()
		f.handle = &h
	}
	return f.handle.Poll(cx)
}

func TestTaskHandle_CancelYieldsCancelledOutcome(t *testing.T) {
	ex := NewBuilder().Build()
	got := Run[Outcome[int]](ex, &awaitsCancelledChild{})
	assert.True(t, got.Cancelled)
}

func TestTaskHandle_DetachIsObservable(t *testing.T) {
	ex := NewBuilder().Build()
	var handle TaskHandle[int]
	Run[int](ex, FutureFunc[int](func(cx *Context) Poll[int] {
		h, err := SpawnLocal[int](cx, immediate[int]{v: 1})
		if err != nil {
			panic(err)
		}
		handle = h
		handle.Detach()
		return Ready(0)
	}))
	assert.True(t, handle.Detached())
}

func TestLocalExecutorBuilder_PreemptQuantum(t *testing.T) {
	ex := NewBuilder().Preempt(10 * time.Millisecond).Build()
	d, set := ex.PreemptQuantum()
	assert.True(t, set)
	assert.Equal(t, 10*time.Millisecond, d)
}

func TestLocalExecutorBuilder_NoPreemptByDefault(t *testing.T) {
	ex := NewBuilder().Build()
	_, set := ex.PreemptQuantum()
	assert.False(t, set)
}

func TestRun_NameAndPinDoNotPreventCompletion(t *testing.T) {
	ex := NewBuilder().Name("wireflow-test-worker").Pin(0).Build()
	got := Run[int](ex, immediate[int]{v: 99})
	assert.Equal(t, 99, got)
}

// readsAffinity reads back the calling OS thread's CPU affinity mask on its
// first (and only) poll. Run pins the thread before driving any Future, so
// this observes the pin from the inside.
type readsAffinity struct{ set unix.CPUSet }

func (f *readsAffinity) Poll(*Context) Poll[unix.CPUSet] {
	unix.SchedGetaffinity(0, &f.set)
	return Ready(f.set)
}

func TestRun_PinSetsActualThreadAffinity(t *testing.T) {
	ex := NewBuilder().Pin(0).Build()
	fut := &readsAffinity{}
	Run[unix.CPUSet](ex, fut)
	if err := ex.PinError(); err != nil {
		t.Skipf("cpu pinning unavailable on this platform: %v", err)
	}
	assert.Equal(t, 1, fut.set.Count())
	assert.True(t, fut.set.IsSet(0))
}
