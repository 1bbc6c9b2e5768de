package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"monoledger/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RunIDKey is the context key for the command run ID
	RunIDKey ContextKey = "run_id"
)

// Log field names
const (
	FieldRunID      = "run_id"
	FieldCommand    = "command"
	FieldDurationMs = "duration_ms"
	FieldSuccess    = "success"
)

// Handler is one traced unit of work.
type Handler func(ctx context.Context) error

// Command runs next under a fresh run ID and logs its start and outcome.
// The error from next is returned unchanged.
func Command(ctx context.Context, logger *log.Logger, name string, next Handler) error {
	if logger == nil {
		logger = log.Discard()
	}
	start := time.Now()

	runID := GenerateRunID()
	ctx = context.WithValue(ctx, RunIDKey, runID)

	logger.DebugContext(ctx, "Command started",
		FieldRunID, runID,
		FieldCommand, name)

	err := next(ctx)

	duration := time.Since(start)
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	args := []any{
		log.FieldComponent, logger.Component(),
		FieldRunID, runID,
		FieldCommand, name,
		FieldDurationMs, duration.Milliseconds(),
		FieldSuccess, err == nil,
	}
	if err != nil {
		args = append(args, log.FieldError, err)
	}
	logger.Log(ctx, level, "Command completed", args...)
	return err
}

// GenerateRunID creates a unique run ID for tracing
func GenerateRunID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("run_%d", time.Now().UnixNano())
	}
	return "run_" + hex.EncodeToString(bytes)
}

// GetRunID extracts the run ID from context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}
