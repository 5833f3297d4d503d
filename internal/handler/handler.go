// Package handler defines the capability every pipeline stage implements.
//
// A Handler is polymorphic over four associated message types: Rin/Rout on
// the inbound path (transport towards application) and Win/Wout on the
// outbound path (application towards transport). None of its methods may
// block or perform I/O; long work belongs in an executor task that re-enters
// the pipeline through a handle.
package handler

import "time"

// Context is the per-handler view of the pipeline: it forwards the event
// currently being dispatched to the handler's upstream or downstream
// neighbor. It is the sole way a Handler reaches its neighbors.
//
// Context is intentionally untyped (messages cross it as any): the static
// adjacency proof lives in the typed builder (internal/typed), and Context
// performs the matching dynamic downcast on receipt. See pipeline.Context.
type Context interface {
	// Name returns the owning handler's name, used in panic diagnostics.
	Name() string

	// FireTransportActive forwards transport_active to the next handler
	// towards the tail.
	FireTransportActive()

	// FireTransportInactive forwards transport_inactive to the next handler
	// towards the tail.
	FireTransportInactive()

	// FireHandleRead forwards an inbound message to the next handler towards
	// the tail. msg is downcast to that handler's Rin; a mismatch panics with
	// "msg can't downcast::<Rin> in <name> handler".
	FireHandleRead(msg any)

	// FireReadException forwards a transport error to the next handler
	// towards the tail.
	FireReadException(err error)

	// FireReadEOF forwards end-of-stream to the next handler towards the
	// tail.
	FireReadEOF()

	// FireHandleTimeout forwards a timeout tick to the next handler towards
	// the tail.
	FireHandleTimeout(now time.Time)

	// FirePollTimeout forwards an earliest-timeout query to the next handler
	// towards the tail, allowing it to lower eto.
	FirePollTimeout(eto *EarliestTimeout)

	// FireWrite forwards an outbound message to the next handler towards the
	// head. msg is downcast to that handler's Win; a mismatch panics with
	// "msg can't downcast::<Win> in <name> handler".
	FireWrite(msg any)

	// FirePollWrite pulls one message from the next handler towards the
	// tail, returning (nil, false) if it has nothing ready.
	FirePollWrite() (any, bool)

	// FireClose forwards close to the next handler towards the head.
	FireClose()
}

// EarliestTimeout accumulates the minimum pending deadline across all
// handlers during a PollTimeout walk. A handler lowers it by calling Lower.
type EarliestTimeout struct {
	deadline time.Time
	set      bool
}

// Lower records t as a candidate earliest deadline, keeping the minimum of
// all candidates seen so far.
func (e *EarliestTimeout) Lower(t time.Time) {
	if !e.set || t.Before(e.deadline) {
		e.deadline = t
		e.set = true
	}
}

// Deadline returns the accumulated earliest deadline and whether any handler
// set one.
func (e *EarliestTimeout) Deadline() (time.Time, bool) {
	return e.deadline, e.set
}

// Handler is a stateful pipeline stage. Rin/Rout describe the inbound path,
// Win/Wout the outbound path. See package doc for the direction convention.
type Handler[Rin, Rout, Win, Wout any] interface {
	// Name is a human-readable identifier used in panic diagnostics and
	// introspection.
	Name() string

	// TransportActive notifies the handler that the transport came up.
	TransportActive(ctx Context)

	// TransportInactive notifies the handler that the transport went down.
	TransportInactive(ctx Context)

	// HandleRead processes an inbound message. Implementations call
	// ctx.FireHandleRead to forward (transformed, split, or verbatim)
	// messages downstream, or do nothing to absorb msg.
	HandleRead(ctx Context, msg Rin)

	// ReadException processes a transport error injected upstream.
	ReadException(ctx Context, err error)

	// ReadEOF processes end-of-stream.
	ReadEOF(ctx Context)

	// HandleTimeout processes a timeout tick.
	HandleTimeout(ctx Context, now time.Time)

	// PollTimeout lets the handler lower eto to its own earliest pending
	// deadline, if any.
	PollTimeout(ctx Context, eto *EarliestTimeout)

	// Write processes an outbound message from the downstream neighbor (or
	// the application, at the tail). Implementations typically buffer it and
	// later release it via PollWrite, or call ctx.FireWrite to hand it
	// upstream immediately.
	Write(ctx Context, msg Win)

	// PollWrite releases one buffered outbound message, if any is ready.
	// Returning false means "nothing ready now", not "never again".
	PollWrite(ctx Context) (Wout, bool)

	// Close releases handler-owned resources. Called at most once.
	Close(ctx Context)
}
