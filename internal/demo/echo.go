package demo

import "github.com/wireflow/wireflow/internal/handler"

// Echo is a tail handler that writes back every line it reads, the
// canonical "smallest possible application" pipeline stage: HandleRead
// turns straight into a Write of the same message, the way an inbound
// channelRead becomes an outbound writeAndFlush in a line-oriented server.
type Echo struct {
	handler.Base
}

func (*Echo) Name() string { return "echo" }

func (*Echo) HandleRead(ctx handler.Context, msg string) {
	ctx.FireWrite(msg)
}

func (*Echo) Write(ctx handler.Context, msg string) {
	ctx.FireWrite(msg)
}

// PollWrite is never the source of outbound data — Echo never buffers —
// so there is nothing to release here.
func (*Echo) PollWrite(handler.Context) (string, bool) { return "", false }
