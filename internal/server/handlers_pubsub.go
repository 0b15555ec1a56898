package server

import (
	"github.com/quietlark/ember/internal/resp"
)

func publish(ctx *cmdContext) resp.Value {
	delivered := ctx.engine.router.Publish(ctx.argString(0), ctx.argString(1))
	return resp.MakeInteger(delivered)
}

// subscribe registers the issuing connection on each named channel and
// acks every channel; the final ack is the dispatcher's reply.
func subscribe(ctx *cmdContext) resp.Value {
	if ctx.peer == nil {
		return resp.MakeError("ERR SUBSCRIBE requires a client connection")
	}

	channels := ctx.argStrings(0)
	for i, channel := range channels {
		if ctx.engine.router.Subscribe(channel, ctx.peer) {
			ctx.peer.subscriptions.Add(1)
		}
		ack := subscriptionAck("subscribe", channel, ctx.peer.subscriptions.Load())
		if i < len(channels)-1 {
			if err := ctx.peer.Send(ack); err != nil {
				return resp.MakeError("ERR failed to deliver subscribe ack")
			}
			continue
		}
		return ack
	}
	return resp.MakeNilBulkString() // unreachable, channels is never empty
}

func unsubscribe(ctx *cmdContext) resp.Value {
	if ctx.peer == nil {
		return resp.MakeError("ERR UNSUBSCRIBE requires a client connection")
	}

	channels := ctx.argStrings(0)
	for i, channel := range channels {
		if ctx.engine.router.Unsubscribe(channel, ctx.peer) {
			ctx.peer.subscriptions.Add(-1)
		}
		ack := subscriptionAck("unsubscribe", channel, ctx.peer.subscriptions.Load())
		if i < len(channels)-1 {
			if err := ctx.peer.Send(ack); err != nil {
				return resp.MakeError("ERR failed to deliver unsubscribe ack")
			}
			continue
		}
		return ack
	}
	return resp.MakeNilBulkString()
}

func subscriptionAck(kind, channel string, count int64) resp.Value {
	return resp.MakeArray([]resp.Value{
		resp.MakeBulkString(kind),
		resp.MakeBulkString(channel),
		resp.MakeInteger(count),
	})
}
