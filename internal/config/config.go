package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Backend names accepted in DATA_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// MaxCacheSize bounds STORE_CACHE_SIZE.
const MaxCacheSize = 4096

var (
	validBackends  = []string{BackendSQLite, BackendFile, BackendMemory}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

type Config struct {
	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// File backend
	DataFilePath string

	// Store
	StoreNamespace string
	StoreCacheSize int

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/monoledger.db"),
		DataFilePath: getEnv("DATA_FILE_PATH", "./data/monoledger.json"),

		StoreNamespace: getEnv("STORE_NAMESPACE", "mono"),
		StoreCacheSize: getEnvInt("STORE_CACHE_SIZE", 32),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if msg := ensureDir(c.SQLiteDBPath); msg != "" {
			errors = append(errors, "cannot create SQLite database directory "+msg)
		}
	}

	// Validate file configuration if backend is file
	if c.DataBackend == BackendFile {
		if c.DataFilePath == "" {
			errors = append(errors, "data file path cannot be empty when using file backend")
		} else if msg := ensureDir(c.DataFilePath); msg != "" {
			errors = append(errors, "cannot create data file directory "+msg)
		}
	}

	// Validate store settings
	if strings.TrimSpace(c.StoreNamespace) == "" {
		errors = append(errors, "store namespace cannot be empty")
	} else if strings.ContainsAny(c.StoreNamespace, " \t\n") {
		errors = append(errors, fmt.Sprintf("invalid store namespace '%s': must not contain whitespace", c.StoreNamespace))
	}
	if c.StoreCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid store cache size %d: must be at least 0", c.StoreCacheSize))
	} else if c.StoreCacheSize > MaxCacheSize {
		errors = append(errors, fmt.Sprintf("invalid store cache size %d: must be at most %d", c.StoreCacheSize, MaxCacheSize))
	}

	// Validate log level
	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir creates the parent directory of path if needed and returns a
// description of the failure, or "".
func ensureDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Sprintf("'%s': %v", dir, err)
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
