package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/recordkv/internal/app"
	"github.com/samvad-hq/recordkv/internal/config"
	"github.com/samvad-hq/recordkv/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "recordctl failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("recordctl starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := app.NewSession(ctx, cfg, log, os.Stdout)
	if err != nil {
		logger.ErrorObj("failed to initialize session", "error", err)
		return err
	}
	defer session.Close()

	return session.Run(ctx, args)
}
