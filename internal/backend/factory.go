package backend

import (
	"context"
	"fmt"

	"monoledger/internal/log"
	"monoledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (storage.Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FileBackend:
		return f.createFileBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (storage.Backend, error) {
	b, err := storage.NewSQLiteBackend(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
	}
	f.logger.DebugContext(ctx, "Initialized SQLite backend",
		log.FieldBackend, config.Type.String(),
		log.FieldPath, config.SQLiteDBPath)
	return b, nil
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (storage.Backend, error) {
	b, err := storage.NewFileBackend(config.DataFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file backend: %w", err)
	}
	f.logger.DebugContext(ctx, "Initialized file backend",
		log.FieldBackend, config.Type.String(),
		log.FieldPath, config.DataFilePath)
	return b, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (storage.Backend, error) {
	f.logger.WarnContext(ctx, "Using memory backend, state is lost on exit",
		log.FieldBackend, MemoryBackend.String())
	return storage.NewMemoryBackend(), nil
}
