package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/quietlark/ember/internal/config"
	"github.com/quietlark/ember/internal/logger"
	"github.com/quietlark/ember/internal/metrics"
	"github.com/quietlark/ember/internal/pubsub"
	"github.com/quietlark/ember/internal/server"
	"github.com/quietlark/ember/internal/storage"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	// a single optional positional argument overrides the listening port
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port <= 0 || port > 65535 {
			fmt.Fprintf(os.Stderr, "invalid port %q\n", os.Args[1])
			os.Exit(2)
		}
		cfg.Server.Port = strconv.Itoa(port)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("Ember starting",
		zap.String("port", cfg.Server.Port),
		zap.Int64("max_clients", cfg.Server.MaxClients),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.Serve(cfg.Metrics.Addr, log)
		defer m.Close() //nolint:errcheck
	}

	store := storage.NewMapStore()
	router := pubsub.NewRouter()
	engine := server.NewEngine(store, router, cfg, log, m)
	srv := server.NewServer(cfg, engine, router, log, m)

	if err := srv.Listen(); err != nil {
		fmt.Fprintln(os.Stderr, "listen error:", err)
		os.Exit(1)
	}
	log.Info("listening on", zap.String("address", srv.Addr().String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.Serve()

	<-ctx.Done()

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown timed out, forcing exit", zap.Error(err))
	} else {
		log.Info("All connections closed gracefully")
	}

	log.Info("Ember stopped")
}
