package demo

import (
	"fmt"
	"reflect"

	"github.com/wireflow/wireflow/internal/handler"
	jsoncodec "github.com/wireflow/wireflow/internal/runtime/jsoncodec"
)

// JSONCodec decodes inbound JSON bytes into a freshly allocated T on read and
// encodes outbound O values back to JSON bytes on write. T must be a pointer
// type. T and O are typically the same
// pointer-to-struct type, mirroring the request/response shape
// internal/runtime/handlers.JSONHandlerRegistration uses one level up, at
// the Watermill message boundary rather than the pipeline boundary.
//
// JSONCodec is meant to sit at the head of the chain, directly against the
// transport's byte boundary, so an encoded write is buffered here rather
// than forwarded further upstream.
type JSONCodec[T, O any] struct {
	handler.Base
	outbox [][]byte
}

func (*JSONCodec[T, O]) Name() string { return "json-codec" }

// HandleRead unmarshals msg into a freshly allocated T and fires it
// downstream, or raises a ReadException if T isn't a pointer type or msg
// isn't valid JSON for T.
func (c *JSONCodec[T, O]) HandleRead(ctx handler.Context, msg []byte) {
	v, err := newPointer[T]()
	if err != nil {
		ctx.FireReadException(err)
		return
	}
	if err := jsoncodec.Unmarshal(msg, v); err != nil {
		ctx.FireReadException(fmt.Errorf("json-codec: %w", err))
		return
	}
	ctx.FireHandleRead(v)
}

// Write marshals msg to JSON and buffers the bytes for PollWrite.
func (c *JSONCodec[T, O]) Write(ctx handler.Context, msg O) {
	payload, err := jsoncodec.Marshal(msg)
	if err != nil {
		ctx.FireReadException(fmt.Errorf("json-codec: %w", err))
		return
	}
	c.outbox = append(c.outbox, payload)
}

// PollWrite releases one buffered payload, if any is ready.
func (c *JSONCodec[T, O]) PollWrite(handler.Context) ([]byte, bool) {
	if len(c.outbox) == 0 {
		return nil, false
	}
	v := c.outbox[0]
	c.outbox = c.outbox[1:]
	return v, true
}

func newPointer[T any]() (T, error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return zero, fmt.Errorf("json-codec: %T must be a pointer type", zero)
	}
	return reflect.New(typ.Elem()).Interface().(T), nil
}
