package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelance-hub/internal/app"
	"freelance-hub/internal/config"
	"freelance-hub/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bootstrap, cleanup, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("failed to bootstrap app: %v", err)
	}
	lg := bootstrap.Container.Logger
	defer func() {
		if err := cleanup(); err != nil {
			lg.WithError(err).Error("cleanup failed", nil)
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		lg.WithError(err).Error("invalid HTTP port", nil)
		return
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", logger.Fields{"addr": addr})
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			lg.WithError(err).Error("server error", nil)
		}
	case sig := <-sigCh:
		lg.Info("shutting down", logger.Fields{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			lg.WithError(err).Error("shutdown error", nil)
		}
	}
}
