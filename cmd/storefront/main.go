// Package main runs the storefront HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopcore/storefront/internal/app"
	"github.com/shopcore/storefront/internal/config"
	"github.com/shopcore/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("main").WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithField("component", "main")

	application, err := app.New(cfg, app.Stores{}, log)
	if err != nil {
		log.WithError(err).Error("failed to start application")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.WithError(err).Error("server error")
	}

	if err := application.Shutdown(context.Background()); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}
