// Package pipeline implements the runtime pipeline: an ordered, frozen
// chain of heterogeneously-typed handlers that dispatches inbound bytes
// towards the application and pulls outbound application messages towards
// the transport. See spec.md §4.2.
//
// Pipeline itself performs no I/O. The enclosing transport loop (out of
// scope here, see internal/drive) is responsible for calling HandleRead with
// bytes it read and draining PollWrite until it returns false.
package pipeline

import (
	"fmt"
	"time"

	"github.com/wireflow/wireflow/internal/handler"
)

// Pipeline is parameterized by the two boundary types: R is what the
// transport feeds in (HandleRead) and reads back out (PollWrite); W is what
// the application writes (Write). Both directions share R at the transport
// edge and W at the application edge — see SPEC_FULL.md §5.4 for why.
//
// A Pipeline is owned by whoever built it and is otherwise a single-threaded
// shared handle: handler contexts, the driving transport loop, and any
// executor task that re-enters it all reach the same *Pipeline on one
// thread, with no locking.
type Pipeline[R, W any] struct {
	nodes   []*node
	built   bool
	active  bool
	closed  bool
	dropped uint64
}

// New creates an empty, unbuilt pipeline. Handlers must be appended with
// AddBack/AddFront and the result passed to Finalize before any dispatch
// method is called.
func New[R, W any]() *Pipeline[R, W] {
	return &Pipeline[R, W]{}
}

// AddBack appends an already-erased handler to the tail of the chain. It is
// the building block typed.AddBack uses (typed.AddFront uses AddFront) after proving
// adjacency at compile time; callers outside this module's typed builder
// bypass that proof and rely entirely on Finalize's runtime check.
func (p *Pipeline[R, W]) AddBack(eh erasedHandler) {
	if p.built {
		panic("pipeline: cannot add handlers after finalize")
	}
	p.nodes = append(p.nodes, &node{h: eh})
}

// AddFront prepends an already-erased handler to the head of the chain.
func (p *Pipeline[R, W]) AddFront(eh erasedHandler) {
	if p.built {
		panic("pipeline: cannot add handlers after finalize")
	}
	p.nodes = append([]*node{{h: eh}}, p.nodes...)
}

// Finalize wires each handler's context to its neighbors and freezes the
// handler list. A second call is a no-op that returns the same pipeline
// (see SPEC_FULL.md §5.2 for why finalize is idempotent rather than an
// error). It panics if the neighbor-type invariant does not hold, as a
// defense-in-depth check behind the typed builder's compile-time proof.
func (p *Pipeline[R, W]) Finalize() *Pipeline[R, W] {
	if p.built {
		return p
	}
	for i, n := range p.nodes {
		if i > 0 {
			n.prev = p.nodes[i-1]
		}
		if i < len(p.nodes)-1 {
			n.next = p.nodes[i+1]
		}
		n.ctx = &nodeContext{n: n}
	}
	p.checkAdjacency()
	p.built = true
	return p
}

func (p *Pipeline[R, W]) checkAdjacency() {
	if len(p.nodes) == 0 {
		return
	}
	head, tail := p.nodes[0], p.nodes[len(p.nodes)-1]
	r, w := typeOf[R](), typeOf[W]()
	if !head.h.rinType().AssignableTo(r) {
		panic(fmt.Sprintf("pipeline: head handler %s has Rin=%s, want %s", head.h.Name(), head.h.rinType(), r))
	}
	if !head.h.woutType().AssignableTo(r) {
		panic(fmt.Sprintf("pipeline: head handler %s has Wout=%s, want %s", head.h.Name(), head.h.woutType(), r))
	}
	if !tail.h.winType().AssignableTo(w) {
		panic(fmt.Sprintf("pipeline: tail handler %s has Win=%s, want %s", tail.h.Name(), tail.h.winType(), w))
	}
	if !tail.h.routType().AssignableTo(w) {
		panic(fmt.Sprintf("pipeline: tail handler %s has Rout=%s, want %s", tail.h.Name(), tail.h.routType(), w))
	}
	for i := 1; i < len(p.nodes); i++ {
		up, down := p.nodes[i-1], p.nodes[i]
		if !up.h.routType().AssignableTo(down.h.rinType()) {
			panic(fmt.Sprintf("pipeline: %s emits Rout=%s but %s expects Rin=%s", up.h.Name(), up.h.routType(), down.h.Name(), down.h.rinType()))
		}
		if !down.h.woutType().AssignableTo(up.h.winType()) {
			panic(fmt.Sprintf("pipeline: %s emits Wout=%s but %s expects Win=%s", down.h.Name(), down.h.woutType(), up.h.Name(), up.h.winType()))
		}
	}
}

// Built reports whether Finalize has run.
func (p *Pipeline[R, W]) Built() bool { return p.built }

// Active reports whether TransportActive has fired without a matching
// TransportInactive since.
func (p *Pipeline[R, W]) Active() bool { return p.active }

// Closed reports whether Close has run.
func (p *Pipeline[R, W]) Closed() bool { return p.closed }

// Dropped returns the number of HandleRead calls absorbed by a closed
// pipeline, the introspection spec.md §8 allows in place of a side effect.
func (p *Pipeline[R, W]) Dropped() uint64 { return p.dropped }

// TransportActive notifies the head handler that the transport came up. A
// handler embedding handler.Base propagates this towards the tail by
// default; overriding handlers decide for themselves whether to continue.
func (p *Pipeline[R, W]) TransportActive() {
	if p.closed || len(p.nodes) == 0 {
		return
	}
	p.active = true
	h := p.nodes[0]
	h.h.TransportActive(h.ctx)
}

// TransportInactive notifies the head handler that the transport went down.
// Unlike every other event, this is allowed after Close per spec.md §4.2.
func (p *Pipeline[R, W]) TransportInactive() {
	p.active = false
	if len(p.nodes) == 0 {
		return
	}
	h := p.nodes[0]
	h.h.TransportInactive(h.ctx)
}

// HandleRead delivers an inbound message to the head handler. Calling it
// before Finalize is a programmer error and panics; calling it on a closed
// pipeline is a no-op beyond incrementing Dropped.
func (p *Pipeline[R, W]) HandleRead(msg R) {
	if !p.built {
		panic("pipeline: HandleRead called before finalize")
	}
	if p.closed {
		p.dropped++
		return
	}
	if len(p.nodes) == 0 {
		return
	}
	h := p.nodes[0]
	h.h.HandleRead(h.ctx, msg)
}

// ReadException delivers a transport error to the head handler, which may
// absorb it or forward it towards the application via Context.FireReadException.
func (p *Pipeline[R, W]) ReadException(err error) {
	if p.closed || len(p.nodes) == 0 {
		return
	}
	h := p.nodes[0]
	h.h.ReadException(h.ctx, err)
}

// ReadEOF delivers end-of-stream to the head handler.
func (p *Pipeline[R, W]) ReadEOF() {
	if p.closed || len(p.nodes) == 0 {
		return
	}
	h := p.nodes[0]
	h.h.ReadEOF(h.ctx)
}

// HandleTimeout delivers a timeout tick to the head handler.
func (p *Pipeline[R, W]) HandleTimeout(now time.Time) {
	if p.closed || len(p.nodes) == 0 {
		return
	}
	h := p.nodes[0]
	h.h.HandleTimeout(h.ctx, now)
}

// PollTimeout asks every handler (via the head's propagation) to lower the
// returned deadline to its own earliest pending timeout. The second return
// value is false if no handler has a pending deadline.
func (p *Pipeline[R, W]) PollTimeout() (time.Time, bool) {
	if len(p.nodes) == 0 {
		return time.Time{}, false
	}
	var eto handler.EarliestTimeout
	h := p.nodes[0]
	h.h.PollTimeout(h.ctx, &eto)
	return eto.Deadline()
}

// Write delivers an outbound application message to the tail handler. Per
// SPEC_FULL.md §5.1, writing to an inactive pipeline is accepted and
// delivered like any other write — the pipeline itself queues nothing; the
// tail handler decides whether to buffer it for PollWrite or drop it.
func (p *Pipeline[R, W]) Write(msg W) {
	if p.closed || len(p.nodes) == 0 {
		return
	}
	t := p.nodes[len(p.nodes)-1]
	t.h.Write(t.ctx, msg)
}

// PollWrite pulls one outbound message from the head handler, which
// typically calls Context.FirePollWrite to recurse toward the tail. It
// returns (zero, false) if nothing is ready, including on an empty or
// closed pipeline.
func (p *Pipeline[R, W]) PollWrite() (R, bool) {
	var zero R
	if p.closed || len(p.nodes) == 0 {
		return zero, false
	}
	h := p.nodes[0]
	v, ok := h.h.PollWrite(h.ctx)
	if !ok {
		return zero, false
	}
	typed, ok := v.(R)
	if !ok {
		panic(fmt.Sprintf("msg can't downcast::<%s> in %s handler", typeOf[R]().String(), h.h.Name()))
	}
	return typed, true
}

// Close walks tail-to-head releasing handler-owned resources, then marks the
// pipeline closed. A second call is a no-op.
func (p *Pipeline[R, W]) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if len(p.nodes) == 0 {
		return
	}
	t := p.nodes[len(p.nodes)-1]
	t.h.Close(t.ctx)
}
