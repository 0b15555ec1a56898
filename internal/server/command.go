package server

import (
	"github.com/quietlark/ember/internal/resp"
	"github.com/quietlark/ember/internal/storage"
)

// cmdContext carries everything a handler may touch for one dispatch
type cmdContext struct {
	args   []resp.Value // arguments, command name excluded
	store  storage.Store
	engine *Engine
	peer   *Peer // nil when the engine runs without a connection
}

type command interface {
	execute(ctx *cmdContext) resp.Value
}

type commandFunc func(ctx *cmdContext) resp.Value

func (c commandFunc) execute(ctx *cmdContext) resp.Value {
	return c(ctx)
}

// argString returns argument i as a plain string
func (c *cmdContext) argString(i int) string {
	return string(c.args[i].String)
}

// argStrings returns arguments from i onward as plain strings
func (c *cmdContext) argStrings(i int) []string {
	out := make([]string, 0, len(c.args)-i)
	for ; i < len(c.args); i++ {
		out = append(out, string(c.args[i].String))
	}
	return out
}
