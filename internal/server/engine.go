package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quietlark/ember/internal/config"
	"github.com/quietlark/ember/internal/metrics"
	"github.com/quietlark/ember/internal/pubsub"
	"github.com/quietlark/ember/internal/resp"
	"github.com/quietlark/ember/internal/storage"
	"go.uber.org/zap"
)

// Engine coordinates command execution and the background reaper
type Engine struct {
	commands map[string]command // registry of available commands (the key is the command name in uppercase)
	store    storage.Store
	router   *pubsub.Router
	cfg      *config.Config
	stop     chan struct{} // signal for the background reaper
	stopOnce sync.Once     // ensures that the stop happens only once
	logger   *zap.Logger
	metrics  *metrics.Metrics

	clientCount func() int64 // connected-client source for INFO; set by the Server
}

// NewEngine initializes the engine, registers the commands, and
// if enabled in the config, starts the background reaper
func NewEngine(s storage.Store, router *pubsub.Router, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Engine {
	engine := &Engine{
		commands: make(map[string]command),
		store:    s,
		router:   router,
		cfg:      cfg,
		stop:     make(chan struct{}),
		logger:   logger,
		metrics:  m,
	}
	engine.registerBasicCommands()

	if cfg.Reaper.Enabled {
		go engine.startReaperLoop()
	}

	return engine
}

// SetClientCount wires the connected-client gauge used by INFO
func (e *Engine) SetClientCount(fn func() int64) {
	e.clientCount = fn
}

// startReaperLoop sweeps expired keys at a fixed cadence. Expiry is
// already enforced on access; the sweep bounds memory.
func (e *Engine) startReaperLoop() {
	interval := e.cfg.Reaper.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := e.store.DeleteExpired(); removed > 0 {
				e.logger.Debug("reaper removed expired keys", zap.Int("removed", removed))
			}
		case <-e.stop:
			e.logger.Info("reaper stopped")
			return
		}
	}
}

// register adds a new command to the engine. The command name is uppercase
func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// registerBasicCommands fills the registry with the supported commands
func (e *Engine) registerBasicCommands() {
	e.register("PING", commandFunc(ping))
	e.register("INFO", commandFunc(info))
	e.register("FLUSHALL", commandFunc(flushAll))

	e.register("SET", commandFunc(set))
	e.register("GET", commandFunc(get))

	e.register("DEL", commandFunc(del))
	e.register("EXISTS", commandFunc(exists))
	e.register("EXPIRE", commandFunc(expire))
	e.register("TTL", commandFunc(ttl))

	e.register("LPUSH", commandFunc(lpush))
	e.register("RPUSH", commandFunc(rpush))
	e.register("LPOP", commandFunc(lpop))
	e.register("RPOP", commandFunc(rpop))
	e.register("LLEN", commandFunc(llen))
	e.register("LRANGE", commandFunc(lrange))

	e.register("HSET", commandFunc(hset))
	e.register("HGET", commandFunc(hget))
	e.register("HDEL", commandFunc(hdel))
	e.register("HGETALL", commandFunc(hgetall))

	e.register("SADD", commandFunc(sadd))
	e.register("SREM", commandFunc(srem))
	e.register("SMEMBERS", commandFunc(smembers))
	e.register("SCARD", commandFunc(scard))

	e.register("PUBLISH", commandFunc(publish))
	e.register("SUBSCRIBE", commandFunc(subscribe))
	e.register("UNSUBSCRIBE", commandFunc(unsubscribe))
}

// Execute finds the command by name and executes it with the passed
// arguments. Match is case-insensitive; arity is validated before the
// handler runs. peer may be nil when no connection is involved.
func (e *Engine) Execute(name string, args []resp.Value, peer *Peer) resp.Value {
	name = strings.ToUpper(name)

	if e.logger.Core().Enabled(zap.DebugLevel) {
		e.logger.Debug("executing command",
			zap.String("cmd", name),
			zap.Int("args_count", len(args)),
		)
	}

	cmd, ok := e.commands[name]
	if !ok {
		return resp.MakeError(fmt.Sprintf("ERR unknown command '%s'", name))
	}

	if !checkArity(name, len(args)+1) {
		return resp.MakeErrorWrongNumberOfArguments(strings.ToLower(name))
	}

	e.metrics.CommandProcessed(name)

	ctx := &cmdContext{
		args:   args,
		store:  e.store,
		engine: e,
		peer:   peer,
	}

	return cmd.execute(ctx)
}

// Shutdown stops the engine's background services
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
}

// connectedClients reports the current client count, 0 when the
// engine runs without a server
func (e *Engine) connectedClients() int64 {
	if e.clientCount == nil {
		return 0
	}
	return e.clientCount()
}
