// Package cli provides the command-line front end and its common
// initialization utilities.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"monoledger/internal/backend"
	"monoledger/internal/config"
	"monoledger/internal/log"
	"monoledger/internal/services"
	"monoledger/internal/storage"
)

// SetupLogger initializes structured logging at the given level and sets
// it as the default logger.
func SetupLogger(level string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Component = log.ComponentCLI
	if out != nil {
		cfg.Output = out
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local use.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err)
		return nil, err
	}
	return cfg, nil
}

// OpenTracker builds the configured backend and loads application state
// from it. The caller closes the returned tracker.
func OpenTracker(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...services.Option) (*services.Tracker, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	b, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	store := storage.New(b,
		storage.WithNamespace(cfg.StoreNamespace),
		storage.WithCacheSize(cfg.StoreCacheSize),
		storage.WithLogger(logger))

	tr, err := services.Open(ctx, store, append([]services.Option{services.WithLogger(logger)}, opts...)...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	return tr, nil
}
