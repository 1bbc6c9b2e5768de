package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend keeps every key in one JSON document on disk. Each Save
// rewrites the document through a temp file and rename, so a crash never
// leaves a half-written file behind.
type FileBackend struct {
	mu    sync.Mutex
	path  string
	items map[string]json.RawMessage
}

func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f := &FileBackend{path: path, items: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f.items); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	return f, nil
}

func (f *FileBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (f *FileBackend) Save(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.items[key]
	f.items[key] = bytes.Clone(value)
	if err := f.flush(); err != nil {
		if had {
			f.items[key] = prev
		} else {
			delete(f.items, key)
		}
		return err
	}
	return nil
}

func (f *FileBackend) flush() error {
	data, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".monoledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }
