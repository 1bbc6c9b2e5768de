package backend

import (
	"context"

	"monoledger/internal/storage"
)

// Factory creates storage backends based on configuration
type Factory interface {
	// CreateBackend opens the backend described by config. The caller owns
	// the result and releases it with Close.
	CreateBackend(ctx context.Context, config Config) (storage.Backend, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// File specific
	DataFilePath string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
