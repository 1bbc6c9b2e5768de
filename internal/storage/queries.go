package storage

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

const getValue = `-- name: GetValue :one
SELECT value FROM kv_store WHERE key = ?
`

func (q *Queries) GetValue(ctx context.Context, key string) ([]byte, error) {
	row := q.db.QueryRowContext(ctx, getValue, key)
	var value []byte
	err := row.Scan(&value)
	return value, err
}

const upsertValue = `-- name: UpsertValue :exec
INSERT INTO kv_store (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

type UpsertValueParams struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

func (q *Queries) UpsertValue(ctx context.Context, arg UpsertValueParams) error {
	_, err := q.db.ExecContext(ctx, upsertValue, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}
