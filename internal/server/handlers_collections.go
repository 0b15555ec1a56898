package server

import (
	"errors"
	"strconv"

	"github.com/quietlark/ember/internal/resp"
	"github.com/quietlark/ember/internal/storage"
)

func lpush(ctx *cmdContext) resp.Value {
	length, err := ctx.store.LPush(ctx.argString(0), ctx.argStrings(1)...)
	if errors.Is(err, storage.ErrWrongType) {
		return resp.MakeErrorWrongType()
	}
	return resp.MakeInteger(length)
}

func rpush(ctx *cmdContext) resp.Value {
	length, err := ctx.store.RPush(ctx.argString(0), ctx.argStrings(1)...)
	if errors.Is(err, storage.ErrWrongType) {
		return resp.MakeErrorWrongType()
	}
	return resp.MakeInteger(length)
}

func lpop(ctx *cmdContext) resp.Value {
	value, ok := ctx.store.LPop(ctx.argString(0))
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkString(value)
}

func rpop(ctx *cmdContext) resp.Value {
	value, ok := ctx.store.RPop(ctx.argString(0))
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkString(value)
}

func llen(ctx *cmdContext) resp.Value {
	length, err := ctx.store.LLen(ctx.argString(0))
	if errors.Is(err, storage.ErrWrongType) {
		return resp.MakeErrorWrongType()
	}
	return resp.MakeInteger(length)
}

// lrange replies an empty array for absent, expired, and mistyped
// keys alike; only unparsable indices are an error
func lrange(ctx *cmdContext) resp.Value {
	start, err := strconv.ParseInt(ctx.argString(1), 10, 64)
	if err != nil {
		return resp.MakeError("ERR invalid range")
	}
	stop, err := strconv.ParseInt(ctx.argString(2), 10, 64)
	if err != nil {
		return resp.MakeError("ERR invalid range")
	}

	return resp.MakeBulkArray(ctx.store.LRange(ctx.argString(0), start, stop))
}

// hset assigns field/value pairs; the reply counts fields that did
// not exist before
func hset(ctx *cmdContext) resp.Value {
	fieldValues := ctx.argStrings(1)
	if len(fieldValues)%2 != 0 {
		return resp.MakeErrorWrongNumberOfArguments("hset")
	}

	added, err := ctx.store.HSet(ctx.argString(0), fieldValues...)
	if errors.Is(err, storage.ErrWrongType) {
		return resp.MakeErrorWrongType()
	}
	return resp.MakeInteger(added)
}

func hget(ctx *cmdContext) resp.Value {
	value, ok := ctx.store.HGet(ctx.argString(0), ctx.argString(1))
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkString(value)
}

func hdel(ctx *cmdContext) resp.Value {
	return resp.MakeInteger(ctx.store.HDel(ctx.argString(0), ctx.argStrings(1)...))
}

func hgetall(ctx *cmdContext) resp.Value {
	return resp.MakeBulkArray(ctx.store.HGetAll(ctx.argString(0)))
}

func sadd(ctx *cmdContext) resp.Value {
	added, err := ctx.store.SAdd(ctx.argString(0), ctx.argStrings(1)...)
	if errors.Is(err, storage.ErrWrongType) {
		return resp.MakeErrorWrongType()
	}
	return resp.MakeInteger(added)
}

func srem(ctx *cmdContext) resp.Value {
	return resp.MakeInteger(ctx.store.SRem(ctx.argString(0), ctx.argStrings(1)...))
}

func smembers(ctx *cmdContext) resp.Value {
	return resp.MakeBulkArray(ctx.store.SMembers(ctx.argString(0)))
}

func scard(ctx *cmdContext) resp.Value {
	return resp.MakeInteger(ctx.store.SCard(ctx.argString(0)))
}
