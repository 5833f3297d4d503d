package demo

import (
	"fmt"
	"unicode/utf8"

	"github.com/wireflow/wireflow/internal/handler"
)

// Utf8Codec decodes inbound lines as UTF-8 text and encodes outbound text
// back to bytes, typically sandwiched between LineFramer and a text-level
// handler like Echo. It never buffers itself: an outbound string is encoded
// and forwarded upstream immediately, leaving buffering to whichever
// handler sits at the head.
type Utf8Codec struct {
	handler.Base
}

func (*Utf8Codec) Name() string { return "utf8-codec" }

// HandleRead validates msg as UTF-8 and fires the decoded string downstream,
// or raises a ReadException on invalid input rather than forwarding garbage.
func (c *Utf8Codec) HandleRead(ctx handler.Context, msg []byte) {
	if !utf8.Valid(msg) {
		ctx.FireReadException(fmt.Errorf("utf8-codec: invalid UTF-8 in %d bytes", len(msg)))
		return
	}
	ctx.FireHandleRead(string(msg))
}

// Write encodes an outbound string to bytes and forwards it towards the head.
func (c *Utf8Codec) Write(ctx handler.Context, msg string) {
	ctx.FireWrite([]byte(msg))
}

// PollWrite is never the source of outbound data for this handler — it only
// ever forwards what's written through it — so there is nothing to release.
func (c *Utf8Codec) PollWrite(handler.Context) ([]byte, bool) { return nil, false }
