package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"pergola/internal/api"
	"pergola/internal/auth"
	"pergola/internal/blob"
	"pergola/internal/config"
	"pergola/internal/daemon"
	"pergola/internal/logging"
	"pergola/internal/notifications"
	"pergola/internal/server"
	"pergola/internal/session"
	"pergola/internal/store"
	"pergola/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("ensure directories", logging.Error(err))
		return
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	blobs, err := blob.Open(ctx, cfg)
	if err != nil {
		logger.Error("open blob store", logging.Error(err))
		_ = st.Close()
		return
	}

	notifier := notifications.NewService(cfg)
	engine := workflow.NewEngine(st, notifier, logger)
	svc := api.NewService(st, engine, blobs, auth.NewService(st, cfg))
	srv := server.New(cfg, svc, session.NewManager(cfg), logger)

	d, err := daemon.New(cfg, st, srv, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("pergolad shutting down")
}
