package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores values in a single kv_store table.
type SQLiteBackend struct {
	db      *sql.DB
	queries *Queries
	schema  uint
}

func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; keeps modernc from interleaving connections on the file.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteBackend{
		db:      db,
		queries: NewQueries(db),
		schema:  schema,
	}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := b.queries.GetValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get value: %w", err)
	}
	return value, true, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, key string, value []byte) error {
	err := b.queries.UpsertValue(ctx, UpsertValueParams{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

// SchemaVersion reports the migrated schema version.
func (b *SQLiteBackend) SchemaVersion() uint {
	return b.schema
}

func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
