// Package storage persists the application snapshot as independent JSON
// blobs in a key-value backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/terra-clan/manrura/internal/config"
)

// KV is a string-keyed blob store
type KV interface {
	// Get returns the value of key. A missing key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Open creates the backend selected in cfg
func Open(ctx context.Context, cfg config.StorageConfig) (KV, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendSQLite, "":
		return NewSQLiteKV(cfg.SQLitePath)
	case BackendPostgres:
		if err := MigrateFromDSN(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewPostgresKV(ctx, PostgresConfig{
			DSN:      cfg.Database.DSN,
			Table:    cfg.Database.Table,
			MaxConns: int32(cfg.Database.MaxConns),
		})
	case BackendRedis:
		return NewRedisKV(ctx, RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// MemoryKV keeps blobs in process memory. Used in tests and for throwaway runs.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Ping always succeeds
func (m *MemoryKV) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (m *MemoryKV) Close() error {
	return nil
}
