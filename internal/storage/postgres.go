package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// DefaultPostgresTable is created by migrations/001_manrura_state.sql
const DefaultPostgresTable = "manrura_state"

// PostgresKV implements KV on a single PostgreSQL table
type PostgresKV struct {
	pool  *pgxpool.Pool
	table string // quoted identifier
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN         string
	Table       string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
}

// NewPostgresKV connects to PostgreSQL and checks the connection
func NewPostgresKV(ctx context.Context, cfg PostgresConfig) (*PostgresKV, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	// Set pool configuration
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	} else {
		poolConfig.MaxConns = 10 // default
	}

	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	} else {
		poolConfig.MinConns = 1 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = DefaultPostgresTable
	}

	kv := &PostgresKV{pool: pool, table: pq.QuoteIdentifier(table)}
	if err := kv.ensureTable(ctx, table); err != nil {
		pool.Close()
		return nil, err
	}

	return kv, nil
}

// ensureTable creates a custom table that the bundled migrations do not know
// about, and converts a table left over with a JSONB value column
func (p *PostgresKV) ensureTable(ctx context.Context, name string) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + p.table + ` (
			key        VARCHAR(255) PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`
	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", p.table, err)
	}

	var dataType string
	err := p.pool.QueryRow(ctx, `
		SELECT data_type FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1 AND column_name = 'value'
	`, name).Scan(&dataType)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", p.table, err)
	}

	if dataType == "jsonb" {
		slog.Info("converting state table to bytea", "table", name)
		alter := `ALTER TABLE ` + p.table + ` ALTER COLUMN value TYPE BYTEA USING convert_to(value::text, 'UTF8')`
		if _, err := p.pool.Exec(ctx, alter); err != nil {
			return fmt.Errorf("failed to convert table %s: %w", p.table, err)
		}
	}
	return nil
}

// Get reads one blob
func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT value FROM ` + p.table + ` WHERE key = $1`

	var value []byte
	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, true, nil
}

// Set upserts one blob
func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO ` + p.table + ` (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := p.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Ping checks database connectivity
func (p *PostgresKV) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection pool
func (p *PostgresKV) Close() error {
	p.pool.Close()
	return nil
}
