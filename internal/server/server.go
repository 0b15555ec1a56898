package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/quietlark/ember/internal/config"
	"github.com/quietlark/ember/internal/metrics"
	"github.com/quietlark/ember/internal/pubsub"
	"github.com/quietlark/ember/internal/resp"
	"go.uber.org/zap"
)

// Server accepts TCP connections and runs one worker per client.
// The active-connection count is bounded by server.max_clients;
// connections above the bound are closed on accept.
type Server struct {
	cfg     *config.Config
	engine  *Engine
	router  *pubsub.Router
	logger  *zap.Logger
	metrics *metrics.Metrics

	listener net.Listener
	clients  atomic.Int64
	wg       sync.WaitGroup
}

func NewServer(cfg *config.Config, engine *Engine, router *pubsub.Router, logger *zap.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		router:  router,
		logger:  logger,
		metrics: m,
	}
	engine.SetClientCount(s.ConnectedClients)
	return s
}

// Listen binds the configured address. SO_REUSEADDR is the default
// for Go listeners.
func (s *Server) Listen() error {
	address := net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// Addr returns the bound address, useful when listening on port 0
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// ConnectedClients reports the current worker count
func (s *Server) ConnectedClients() int64 {
	return s.clients.Load()
}

// Serve accepts until the listener is closed
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("accept error", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection runs the per-client request loop:
// read a request, dispatch it, write the reply, repeat until EOF
func (s *Server) handleConnection(conn net.Conn) {
	if s.clients.Add(1) > s.cfg.Server.MaxClients {
		s.clients.Add(-1)
		conn.Close() //nolint:errcheck
		s.logger.Warn("connection limit reached, closing client",
			zap.String("addr", conn.RemoteAddr().String()),
		)
		return
	}

	s.metrics.ConnectionAccepted()
	s.metrics.SetConnectedClients(s.clients.Load())

	if s.logger.Core().Enabled(zap.DebugLevel) {
		s.logger.Debug("client connected", zap.String("addr", conn.RemoteAddr().String()))
	}

	peer := NewPeer(conn)
	defer func() {
		s.router.UnsubscribeAll(peer)
		peer.Close() //nolint:errcheck
		s.metrics.SetConnectedClients(s.clients.Add(-1))

		if s.logger.Core().Enabled(zap.DebugLevel) {
			s.logger.Debug("client disconnected", zap.String("addr", peer.RemoteAddr()))
		}
	}()

	for {
		cmdValue, err := peer.ReadCommand()
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("read command failed", zap.Error(err))
			}
			return
		}

		if cmdValue.Type != resp.TypeArray || len(cmdValue.Array) == 0 {
			continue
		}

		commandName := string(cmdValue.Array[0].String)
		args := cmdValue.Array[1:]

		result := s.engine.Execute(commandName, args, peer)

		if err = peer.Write(result); err != nil {
			s.logger.Error("error writing response", zap.Error(err))
			return
		}

		// hold the flush while more pipelined requests are waiting
		if peer.InputBuffered() == 0 {
			if err := peer.Flush(); err != nil {
				return
			}
		}
	}
}

// Shutdown closes the listener, stops the engine, and waits for the
// workers to drain until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener != nil {
		s.listener.Close() //nolint:errcheck
	}
	s.engine.Shutdown()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
