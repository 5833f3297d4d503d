package pipeline

import (
	"fmt"
	"reflect"
	"time"

	"github.com/wireflow/wireflow/internal/handler"
)

// erasedHandler internalizes a Handler[Rin, Rout, Win, Wout]'s four
// associated types as opaque any values, and performs the dynamic downcast
// at every neighbor hand-off. This is the type-erased bridge spec.md §4.2
// calls for: the typed builder (internal/typed) pushes the static proof into
// its own type parameters, so this check is defense in depth, not the
// primary guarantee.
type erasedHandler interface {
	Name() string
	TransportActive(ctx handler.Context)
	TransportInactive(ctx handler.Context)
	HandleRead(ctx handler.Context, msg any)
	ReadException(ctx handler.Context, err error)
	ReadEOF(ctx handler.Context)
	HandleTimeout(ctx handler.Context, now time.Time)
	PollTimeout(ctx handler.Context, eto *handler.EarliestTimeout)
	Write(ctx handler.Context, msg any)
	PollWrite(ctx handler.Context) (any, bool)
	Close(ctx handler.Context)

	rinType() reflect.Type
	routType() reflect.Type
	winType() reflect.Type
	woutType() reflect.Type
}

type adapter[Rin, Rout, Win, Wout any] struct {
	h handler.Handler[Rin, Rout, Win, Wout]
}

// Wrap erases a concrete Handler's associated types so it can be stored
// alongside handlers of other types in a single pipeline. Exported so the
// typed builder (which has already proven adjacency at compile time) can
// hand the runtime pipeline a ready-made erasedHandler.
func Wrap[Rin, Rout, Win, Wout any](h handler.Handler[Rin, Rout, Win, Wout]) erasedHandler {
	return &adapter[Rin, Rout, Win, Wout]{h: h}
}

func (a *adapter[Rin, Rout, Win, Wout]) Name() string { return a.h.Name() }

func (a *adapter[Rin, Rout, Win, Wout]) TransportActive(ctx handler.Context) {
	a.h.TransportActive(ctx)
}

func (a *adapter[Rin, Rout, Win, Wout]) TransportInactive(ctx handler.Context) {
	a.h.TransportInactive(ctx)
}

func (a *adapter[Rin, Rout, Win, Wout]) HandleRead(ctx handler.Context, msg any) {
	typed, ok := msg.(Rin)
	if !ok {
		panic(downcastPanic[Rin](a.h.Name()))
	}
	a.h.HandleRead(ctx, typed)
}

func (a *adapter[Rin, Rout, Win, Wout]) ReadException(ctx handler.Context, err error) {
	a.h.ReadException(ctx, err)
}

func (a *adapter[Rin, Rout, Win, Wout]) ReadEOF(ctx handler.Context) {
	a.h.ReadEOF(ctx)
}

func (a *adapter[Rin, Rout, Win, Wout]) HandleTimeout(ctx handler.Context, now time.Time) {
	a.h.HandleTimeout(ctx, now)
}

func (a *adapter[Rin, Rout, Win, Wout]) PollTimeout(ctx handler.Context, eto *handler.EarliestTimeout) {
	a.h.PollTimeout(ctx, eto)
}

func (a *adapter[Rin, Rout, Win, Wout]) Write(ctx handler.Context, msg any) {
	typed, ok := msg.(Win)
	if !ok {
		panic(downcastPanic[Win](a.h.Name()))
	}
	a.h.Write(ctx, typed)
}

func (a *adapter[Rin, Rout, Win, Wout]) PollWrite(ctx handler.Context) (any, bool) {
	v, ok := a.h.PollWrite(ctx)
	if !ok {
		return nil, false
	}
	return v, true
}

func (a *adapter[Rin, Rout, Win, Wout]) Close(ctx handler.Context) {
	a.h.Close(ctx)
}

func (a *adapter[Rin, Rout, Win, Wout]) rinType() reflect.Type  { return typeOf[Rin]() }
func (a *adapter[Rin, Rout, Win, Wout]) routType() reflect.Type { return typeOf[Rout]() }
func (a *adapter[Rin, Rout, Win, Wout]) winType() reflect.Type  { return typeOf[Win]() }
func (a *adapter[Rin, Rout, Win, Wout]) woutType() reflect.Type { return typeOf[Wout]() }

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// downcastPanic formats the canonical diagnostic spec.md §6 requires tests to
// assert a substring of: "msg can't downcast::<T> in <name> handler".
func downcastPanic[T any](name string) string {
	return fmt.Sprintf("msg can't downcast::<%s> in %s handler", typeOf[T]().String(), name)
}
