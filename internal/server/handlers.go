package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quietlark/ember/internal/resp"
	"github.com/quietlark/ember/internal/storage"
)

const (
	serverVersion = "0.1.0"

	// cosmetic per-key overhead used by the INFO memory estimate
	keyOverheadBytes = 128
)

func ping(ctx *cmdContext) resp.Value {
	switch len(ctx.args) {
	case 0:
		return resp.MakeSimpleString("PONG")
	case 1:
		return resp.MakeBulkString(ctx.argString(0))
	default:
		return resp.MakeErrorWrongNumberOfArguments("ping")
	}
}

func info(ctx *cmdContext) resp.Value {
	keys := ctx.store.Len()

	var b strings.Builder
	b.WriteString("# Server\r\n")
	fmt.Fprintf(&b, "ember_version:%s\r\n", serverVersion)
	b.WriteString("redis_version:7.0.0-compatible\r\n")
	b.WriteString("# Clients\r\n")
	fmt.Fprintf(&b, "connected_clients:%d\r\n", ctx.engine.connectedClients())
	b.WriteString("# Memory\r\n")
	fmt.Fprintf(&b, "used_memory:%d\r\n", keys*keyOverheadBytes)
	b.WriteString("# Keyspace\r\n")
	fmt.Fprintf(&b, "db0:keys=%d\r\n", keys)

	return resp.MakeBulkString(b.String())
}

// flushAll clears the keyspace; channel subscriptions survive
func flushAll(ctx *cmdContext) resp.Value {
	ctx.store.FlushAll()
	return resp.MakeSimpleString("OK")
}

// set stores a string value: SET key value [EX seconds].
// A plain SET replaces any prior value and clears its expiry.
func set(ctx *cmdContext) resp.Value {
	key, value := ctx.argString(0), ctx.argString(1)

	var ttl time.Duration
	switch len(ctx.args) {
	case 2:
	case 4:
		if !strings.EqualFold(ctx.argString(2), "EX") {
			return resp.MakeError("ERR syntax error")
		}
		seconds, err := strconv.ParseInt(ctx.argString(3), 10, 64)
		if err != nil || seconds < 0 {
			return resp.MakeError("ERR invalid expire time")
		}
		ttl = time.Duration(seconds) * time.Second
		if seconds == 0 {
			// EX 0 means a deadline of now, not "no expiry"
			ttl = time.Nanosecond
		}
	default:
		return resp.MakeError("ERR syntax error")
	}

	ctx.store.Set(key, value, ttl)
	return resp.MakeSimpleString("OK")
}

func get(ctx *cmdContext) resp.Value {
	value, ok, err := ctx.store.Get(ctx.argString(0))
	if errors.Is(err, storage.ErrWrongType) {
		return resp.MakeErrorWrongType()
	}
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkString(value)
}

func del(ctx *cmdContext) resp.Value {
	return resp.MakeInteger(ctx.store.Delete(ctx.argStrings(0)...))
}

func exists(ctx *cmdContext) resp.Value {
	return resp.MakeInteger(ctx.store.Exists(ctx.argStrings(0)...))
}

func expire(ctx *cmdContext) resp.Value {
	seconds, err := strconv.ParseInt(ctx.argString(1), 10, 64)
	if err != nil || seconds < 0 {
		return resp.MakeError("ERR invalid expire time")
	}

	ttl := time.Duration(seconds) * time.Second
	if seconds == 0 {
		ttl = time.Nanosecond
	}

	return resp.MakeInteger(ctx.store.Expire(ctx.argString(0), ttl))
}

func ttl(ctx *cmdContext) resp.Value {
	return resp.MakeInteger(ctx.store.TTL(ctx.argString(0)))
}
