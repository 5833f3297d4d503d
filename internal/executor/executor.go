package executor

import (
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Worker is the per-thread runtime state of one running LocalExecutor,
// handed to Futures through Context so they can spawn further tasks. It
// carries no public fields; SpawnLocal is the only thing that needs it.
type Worker struct {
	ex *LocalExecutor
}

// LocalExecutor is a cooperative, single-threaded scheduler: Run dedicates
// the calling OS thread to it until the root future completes, and every
// task it spawns is polled on that same thread — never concurrently with
// another task, never on another thread. This is the opposite of Go's
// default goroutine scheduler, chosen deliberately: the pipeline types this
// package drives assume single-threaded, lock-free re-entrancy.
type LocalExecutor struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ready  []runnable
	queued map[runnable]struct{}

	name    string
	cpuID   int
	hasCPU  bool
	preempt time.Duration

	pinErr error
}

// LocalExecutorBuilder configures a LocalExecutor before it runs. The
// zero value is a valid builder with no thread name, no CPU pin, and no
// preemption quantum.
type LocalExecutorBuilder struct {
	name    string
	cpuID   int
	hasCPU  bool
	preempt time.Duration
}

// NewBuilder returns an unconfigured LocalExecutorBuilder. The zero value
// would do equally well; NewBuilder exists for call-site symmetry with the
// Name/Pin/Preempt chain.
func NewBuilder() *LocalExecutorBuilder { return &LocalExecutorBuilder{} }

// Name sets the OS thread name Run applies before running anything.
func (b *LocalExecutorBuilder) Name(s string) *LocalExecutorBuilder {
	b.name = s
	return b
}

// Pin requests the executor's thread be restricted to cpuID via
// sched_setaffinity before running anything.
func (b *LocalExecutorBuilder) Pin(cpuID int) *LocalExecutorBuilder {
	b.cpuID = cpuID
	b.hasCPU = true
	return b
}

// Preempt sets a cooperative time-slice hint, readable through
// LocalExecutor.PreemptQuantum, that a long-running task can use to decide
// when to voluntarily yield. Context and Worker do not expose it. The
// executor itself never preempts — this is advisory only.
func (b *LocalExecutorBuilder) Preempt(quantum time.Duration) *LocalExecutorBuilder {
	b.preempt = quantum
	return b
}

// Build produces a LocalExecutor from the accumulated options. The builder
// may be reused afterwards; each Build call returns an independent executor.
func (b *LocalExecutorBuilder) Build() *LocalExecutor {
	ex := &LocalExecutor{
		queued:  make(map[runnable]struct{}),
		name:    b.name,
		cpuID:   b.cpuID,
		hasCPU:  b.hasCPU,
		preempt: b.preempt,
	}
	ex.cond = sync.NewCond(&ex.mu)
	return ex
}

func (ex *LocalExecutor) enqueue(r runnable) {
	ex.mu.Lock()
	if _, already := ex.queued[r]; !already {
		ex.queued[r] = struct{}{}
		ex.ready = append(ex.ready, r)
		ex.cond.Signal()
	}
	ex.mu.Unlock()
}

func (ex *LocalExecutor) dequeueAll() []runnable {
	ex.mu.Lock()
	for len(ex.ready) == 0 {
		ex.cond.Wait()
	}
	batch := ex.ready
	ex.ready = nil
	for _, r := range batch {
		delete(ex.queued, r)
	}
	ex.mu.Unlock()
	return batch
}

func (ex *LocalExecutor) newWaker(r runnable) *Waker {
	return &Waker{wake: func() { ex.enqueue(r) }}
}

// PreemptQuantum returns the builder's preemption hint, if any.
func (ex *LocalExecutor) PreemptQuantum() (time.Duration, bool) {
	return ex.preempt, ex.preempt > 0
}

// PinError returns the error from the most recent CPU pin attempt, if Run
// has run and a CPU id was requested. A failed pin does not abort Run —
// the executor still runs, just without the affinity guarantee — since
// sched_setaffinity commonly fails under containerized cgroup restrictions
// that a single-host request can't anticipate.
func (ex *LocalExecutor) PinError() error { return ex.pinErr }

// Run dedicates the calling OS thread to this executor, applies the
// configured thread name and CPU pin, then drives fut and every task it
// (transitively) spawns until fut completes, returning fut's output. Run
// returns as soon as fut is done; spawned tasks still pending at that point
// are not polled again.
//
// Run is a free function rather than a method because Go methods cannot
// introduce a type parameter beyond the receiver's.
func Run[T any](ex *LocalExecutor, fut Future[T]) T {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if ex.hasCPU {
		ex.pinErr = pinCurrentThread(ex.cpuID)
	}
	if ex.name != "" {
		_ = setThreadName(ex.name)
	}

	root := spawnOn(ex, fut)
	for {
		root.task.mu.Lock()
		done := root.task.done
		root.task.mu.Unlock()
		if done {
			break
		}
		for _, r := range ex.dequeueAll() {
			r.run()
		}
	}
	return root.task.result
}

func pinCurrentThread(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("executor: pin to cpu %d: %w", cpuID, err)
	}
	return nil
}

func setThreadName(name string) error {
	// PR_SET_NAME truncates silently past 15 bytes; callers that care about
	// the full name should keep it within that limit themselves.
	b, err := unix.ByteSliceFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}
