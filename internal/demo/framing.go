// Package demo collects small, self-contained pipeline stages used by the
// examples and tests to exercise internal/pipeline and internal/typed end to
// end. Nothing under internal/runtime or internal/executor imports this
// package — it is reference material for composing a Builder chain, not part
// of the sans-I/O core itself.
package demo

import (
	"bytes"

	"github.com/wireflow/wireflow/internal/handler"
)

// LineFramer splits an inbound byte stream on '\n' and joins outbound lines
// back with a trailing '\n'. It is typically the head of a text-protocol
// pipeline, sitting directly against the transport.
type LineFramer struct {
	handler.Base
	buf    []byte
	outbox [][]byte
}

func (*LineFramer) Name() string { return "line-framer" }

// HandleRead appends msg to the internal buffer and fires one
// FireHandleRead per complete line found, holding back any trailing partial
// line for the next call.
func (f *LineFramer) HandleRead(ctx handler.Context, msg []byte) {
	f.buf = append(f.buf, msg...)
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := make([]byte, i)
		copy(line, f.buf[:i])
		f.buf = f.buf[i+1:]
		ctx.FireHandleRead(line)
	}
}

// Write appends a trailing newline and buffers the framed line for PollWrite
// to release towards the transport. LineFramer is meant to sit at the head
// of the chain, so there is no further handler to forward to.
func (f *LineFramer) Write(ctx handler.Context, msg []byte) {
	framed := make([]byte, 0, len(msg)+1)
	framed = append(framed, msg...)
	framed = append(framed, '\n')
	f.outbox = append(f.outbox, framed)
}

// PollWrite releases one buffered framed line, if any is ready.
func (f *LineFramer) PollWrite(handler.Context) ([]byte, bool) {
	if len(f.outbox) == 0 {
		return nil, false
	}
	v := f.outbox[0]
	f.outbox = f.outbox[1:]
	return v, true
}
