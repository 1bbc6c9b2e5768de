package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		DataBackend:    BackendMemory,
		StoreNamespace: "mono",
		StoreCacheSize: 32,
		LogLevel:       "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid sqlite backend config",
			mutate: func(c *Config) {
				c.DataBackend = BackendSQLite
				c.SQLiteDBPath = filepath.Join(tmpDir, "db", "test.db")
			},
			wantErr: false,
		},
		{
			name: "valid file backend config",
			mutate: func(c *Config) {
				c.DataBackend = BackendFile
				c.DataFilePath = filepath.Join(tmpDir, "state.json")
			},
			wantErr: false,
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [sqlite file memory]",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.DataBackend = BackendSQLite
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name: "file backend missing path",
			mutate: func(c *Config) {
				c.DataBackend = BackendFile
				c.DataFilePath = ""
			},
			wantErr:     true,
			errorString: "data file path cannot be empty when using file backend",
		},
		{
			name:        "empty namespace",
			mutate:      func(c *Config) { c.StoreNamespace = " " },
			wantErr:     true,
			errorString: "store namespace cannot be empty",
		},
		{
			name:        "namespace with whitespace",
			mutate:      func(c *Config) { c.StoreNamespace = "my ledger" },
			wantErr:     true,
			errorString: "must not contain whitespace",
		},
		{
			name:        "negative cache size",
			mutate:      func(c *Config) { c.StoreCacheSize = -1 },
			wantErr:     true,
			errorString: "invalid store cache size -1: must be at least 0",
		},
		{
			name:        "cache size too large",
			mutate:      func(c *Config) { c.StoreCacheSize = 5000 },
			wantErr:     true,
			errorString: "invalid store cache size 5000: must be at most 4096",
		},
		{
			name:    "cache disabled",
			mutate:  func(c *Config) { c.StoreCacheSize = 0 },
			wantErr: false,
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestConfig_ValidateCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := validConfig()
	cfg.DataBackend = BackendSQLite
	cfg.SQLiteDBPath = filepath.Join(dir, "monoledger.db")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be created, got %v", dir, err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		for _, key := range []string{"DATA_BACKEND", "SQLITE_DB_PATH", "DATA_FILE_PATH", "STORE_NAMESPACE", "STORE_CACHE_SIZE", "LOG_LEVEL"} {
			t.Setenv(key, "")
		}
		cfg := Load()

		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/monoledger.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/monoledger.db", cfg.SQLiteDBPath)
		}
		if cfg.DataFilePath != "./data/monoledger.json" {
			t.Errorf("Load() DataFilePath = %v, want ./data/monoledger.json", cfg.DataFilePath)
		}
		if cfg.StoreNamespace != "mono" || cfg.StoreCacheSize != 32 || cfg.LogLevel != "info" {
			t.Errorf("Load() store/log defaults = %+v", cfg)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("DATA_BACKEND", "file")
		t.Setenv("DATA_FILE_PATH", "/tmp/ledger.json")
		t.Setenv("STORE_NAMESPACE", "test")
		t.Setenv("STORE_CACHE_SIZE", "0")
		t.Setenv("LOG_LEVEL", "DEBUG")

		cfg := Load()

		if cfg.DataBackend != "file" || cfg.DataFilePath != "/tmp/ledger.json" {
			t.Errorf("Load() backend = %v %v", cfg.DataBackend, cfg.DataFilePath)
		}
		if cfg.StoreNamespace != "test" || cfg.StoreCacheSize != 0 {
			t.Errorf("Load() store = %v %v", cfg.StoreNamespace, cfg.StoreCacheSize)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("STORE_CACHE_SIZE", "invalid")

		cfg := Load()

		if cfg.StoreCacheSize != 32 {
			t.Errorf("Load() StoreCacheSize = %v, want 32 (default for invalid input)", cfg.StoreCacheSize)
		}
	})
}
