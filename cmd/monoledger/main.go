package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"monoledger/internal/cli"
	"monoledger/internal/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env before reading any configuration
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return cli.ExitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := cli.OpenTracker(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger",
			log.FieldBackend, cfg.DataBackend,
			log.FieldError, err)
		return cli.ExitError
	}
	defer func() {
		if err := tr.Close(); err != nil {
			logger.Error("Failed to close ledger", log.FieldError, err)
		}
	}()

	return cli.Run(ctx, tr, logger, os.Args[1:], cli.IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}
