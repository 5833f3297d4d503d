package pipeline

import (
	"time"

	"github.com/wireflow/wireflow/internal/handler"
)

// node is one slot in the pipeline's doubly-linked handler chain. Neighbors
// are reached through prev/next, which are non-owning: the pipeline's nodes
// slice is the sole owner, so there is no reference cycle to break.
type node struct {
	h    erasedHandler
	prev *node
	next *node
	ctx  *nodeContext
}

// nodeContext is the Context a node's handler methods receive. It forwards
// the event currently in flight to the neighbor in the direction implied by
// the Fire* call, which is the only way a handler reaches the rest of the
// chain.
type nodeContext struct {
	n *node
}

func (c *nodeContext) Name() string { return c.n.h.Name() }

func (c *nodeContext) FireTransportActive() {
	if c.n.next != nil {
		c.n.next.h.TransportActive(c.n.next.ctx)
	}
}

func (c *nodeContext) FireTransportInactive() {
	if c.n.next != nil {
		c.n.next.h.TransportInactive(c.n.next.ctx)
	}
}

func (c *nodeContext) FireHandleRead(msg any) {
	if c.n.next != nil {
		c.n.next.h.HandleRead(c.n.next.ctx, msg)
	}
}

func (c *nodeContext) FireReadException(err error) {
	if c.n.next != nil {
		c.n.next.h.ReadException(c.n.next.ctx, err)
	}
}

func (c *nodeContext) FireReadEOF() {
	if c.n.next != nil {
		c.n.next.h.ReadEOF(c.n.next.ctx)
	}
}

func (c *nodeContext) FireHandleTimeout(now time.Time) {
	if c.n.next != nil {
		c.n.next.h.HandleTimeout(c.n.next.ctx, now)
	}
}

func (c *nodeContext) FirePollTimeout(eto *handler.EarliestTimeout) {
	if c.n.next != nil {
		c.n.next.h.PollTimeout(c.n.next.ctx, eto)
	}
}

func (c *nodeContext) FireWrite(msg any) {
	if c.n.prev != nil {
		c.n.prev.h.Write(c.n.prev.ctx, msg)
	}
}

func (c *nodeContext) FirePollWrite() (any, bool) {
	if c.n.next == nil {
		return nil, false
	}
	return c.n.next.h.PollWrite(c.n.next.ctx)
}

func (c *nodeContext) FireClose() {
	if c.n.prev != nil {
		c.n.prev.h.Close(c.n.prev.ctx)
	}
}

var _ handler.Context = (*nodeContext)(nil)
