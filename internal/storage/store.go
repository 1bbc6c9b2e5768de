// Package storage persists application state as JSON values under
// namespaced, versioned keys. Every write goes straight through to the
// backend; nothing is batched.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"monoledger/internal/cache"
	"monoledger/internal/log"
)

// DefaultNamespace prefixes every key.
const DefaultNamespace = "mono"

var (
	// ErrPersist marks a write the backend did not accept.
	ErrPersist = errors.New("persist state")
	// ErrUnavailable marks a read the backend could not serve.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrCorruptValue marks a stored value that no longer decodes.
	ErrCorruptValue = errors.New("corrupt stored value")
)

// Backend is raw durable key-value storage.
type Backend interface {
	// Load returns the value stored under key; ok is false when absent.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Save durably stores value under key before returning.
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key names one independently versioned piece of state. Bumping Version
// moves the value to a fresh slot so old data never collides with a new
// format.
type Key struct {
	Name    string
	Version int
}

func (k Key) String() string {
	return k.Name + "-v" + strconv.Itoa(k.Version)
}

// Store wraps a Backend with key qualification, JSON coding and a read
// cache that is only updated once the backend accepted a write.
type Store struct {
	backend   Backend
	namespace string
	cache     cache.Cache[[]byte]
	logger    *log.Logger
}

type Option func(*Store)

// WithNamespace overrides the key prefix.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

// WithCacheSize bounds the read cache; 0 disables it.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		if n <= 0 {
			s.cache = cache.Nop[[]byte]{}
			return
		}
		s.cache = cache.NewLRUCache[[]byte](n)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStorage)
		}
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		namespace: DefaultNamespace,
		cache:     cache.NewLRUCache[[]byte](32),
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QualifiedKey is the backend key for k, e.g. "mono-expenses-v1".
func (s *Store) QualifiedKey(k Key) string {
	return s.namespace + "-" + k.String()
}

// Load returns the raw encoded value for k.
func (s *Store) Load(ctx context.Context, k Key) ([]byte, bool, error) {
	qk := s.QualifiedKey(k)
	if v, ok := s.cache.Get(qk); ok {
		return v, true, nil
	}
	v, ok, err := s.backend.Load(ctx, qk)
	if err != nil {
		return nil, false, fmt.Errorf("%w: load %s: %w", ErrUnavailable, qk, err)
	}
	if ok {
		s.cache.Set(qk, bytes.Clone(v))
	}
	return v, ok, nil
}

// Save writes the raw encoded value for k through to the backend.
func (s *Store) Save(ctx context.Context, k Key, value []byte) error {
	qk := s.QualifiedKey(k)
	if err := s.backend.Save(ctx, qk, value); err != nil {
		s.cache.Delete(qk)
		s.logger.ErrorContext(ctx, "Failed to persist value",
			log.FieldKey, qk,
			log.FieldErrorType, log.ErrorTypePersistence,
			log.FieldError, err)
		return fmt.Errorf("%w: save %s: %w", ErrPersist, qk, err)
	}
	s.cache.Set(qk, bytes.Clone(value))
	s.logger.DebugContext(ctx, "Value persisted", log.FieldKey, qk)
	return nil
}

func (s *Store) Close() error {
	st := s.cache.Stats()
	s.logger.DebugContext(context.Background(), "Store closed",
		log.FieldCacheHits, st.Hits,
		log.FieldCacheMisses, st.Misses,
		log.FieldCacheEvictions, st.Evictions,
		log.FieldCacheHitRatio, st.HitRatio())
	s.cache.Purge()
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Get returns the value stored under k. On first access with nothing
// stored it persists def and returns it. A value that fails to decode is
// left in place and def is returned together with ErrCorruptValue.
func Get[T any](ctx context.Context, s *Store, k Key, def T) (T, error) {
	raw, ok, err := s.Load(ctx, k)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, Set(ctx, s, k, def)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.WarnContext(ctx, "Stored value does not decode, using default",
			log.FieldKey, s.QualifiedKey(k),
			log.FieldErrorType, log.ErrorTypeCorrupt,
			log.FieldError, err)
		return def, fmt.Errorf("%w: %s: %w", ErrCorruptValue, s.QualifiedKey(k), err)
	}
	return v, nil
}

// Set encodes v and writes it through under k.
func Set[T any](ctx context.Context, s *Store, k Key, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersist, s.QualifiedKey(k), err)
	}
	return s.Save(ctx, k, raw)
}
