package demo

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/wireflow/wireflow/internal/handler"
)

// ProtoCodec decodes inbound protojson bytes into a fresh T on read and
// encodes an outbound T back to protojson bytes on write. T is shared on
// both directions, unlike JSONCodec, since a protobuf schema already
// describes both the request and response shape the way the teacher's own
// ProtoHandlerRegistration[T] does at the Watermill message boundary.
//
// ProtoCodec is meant to sit at the head of the chain, directly against the
// transport's byte boundary, so an encoded write is buffered here rather
// than forwarded further upstream.
type ProtoCodec[T proto.Message] struct {
	handler.Base
	newMessage func() T
	outbox     [][]byte
}

// NewProtoCodec builds a ProtoCodec. newMessage must return a fresh, empty
// T each call — proto.Message values carry internal state that can't be
// safely reused across unmarshal calls.
func NewProtoCodec[T proto.Message](newMessage func() T) *ProtoCodec[T] {
	return &ProtoCodec[T]{newMessage: newMessage}
}

func (*ProtoCodec[T]) Name() string { return "proto-codec" }

func (c *ProtoCodec[T]) HandleRead(ctx handler.Context, msg []byte) {
	v := c.newMessage()
	if err := protojson.Unmarshal(msg, v); err != nil {
		ctx.FireReadException(fmt.Errorf("proto-codec: %w", err))
		return
	}
	ctx.FireHandleRead(v)
}

func (c *ProtoCodec[T]) Write(ctx handler.Context, msg T) {
	payload, err := protojson.Marshal(msg)
	if err != nil {
		ctx.FireReadException(fmt.Errorf("proto-codec: %w", err))
		return
	}
	c.outbox = append(c.outbox, payload)
}

// PollWrite releases one buffered payload, if any is ready.
func (c *ProtoCodec[T]) PollWrite(handler.Context) ([]byte, bool) {
	if len(c.outbox) == 0 {
		return nil, false
	}
	v := c.outbox[0]
	c.outbox = c.outbox[1:]
	return v, true
}
