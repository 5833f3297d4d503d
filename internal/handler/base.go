package handler

import "time"

// Base provides pass-through implementations of every Handler method except
// HandleRead, Write, and PollWrite, which have no sensible default and are
// left to the embedder. Name still must be implemented explicitly.
//
// Each default forwards the event to the next handler in the direction it
// travels, the same way a stage that doesn't care about an event should
// still let it reach whichever stage does. Embed Base to avoid boilerplate
// for stages that only override a subset of events, and override any method
// to absorb that event instead of propagating it.
type Base struct{}

func (Base) TransportActive(ctx Context)                  { ctx.FireTransportActive() }
func (Base) TransportInactive(ctx Context)                { ctx.FireTransportInactive() }
func (Base) ReadException(ctx Context, err error)         { ctx.FireReadException(err) }
func (Base) ReadEOF(ctx Context)                           { ctx.FireReadEOF() }
func (Base) HandleTimeout(ctx Context, now time.Time)      { ctx.FireHandleTimeout(now) }
func (Base) PollTimeout(ctx Context, eto *EarliestTimeout) { ctx.FirePollTimeout(eto) }
func (Base) Close(ctx Context)                             { ctx.FireClose() }
