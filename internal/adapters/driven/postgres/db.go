package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// DB is the connection pool backing the research memory store.
type DB struct {
	*sql.DB
}

// Config controls the pool. Zero limits leave database/sql defaults in place.
type Config struct {
	URL         string
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// DefaultConfig sizes the pool for a single research process.
func DefaultConfig(url string) Config {
	return Config{
		URL:         url,
		MaxOpen:     10,
		MaxIdle:     2,
		MaxLifetime: 30 * time.Minute,
		MaxIdleTime: 5 * time.Minute,
	}
}

func (c Config) apply(db *sql.DB) {
	if c.MaxOpen > 0 {
		db.SetMaxOpenConns(c.MaxOpen)
	}
	if c.MaxIdle > 0 {
		db.SetMaxIdleConns(c.MaxIdle)
	}
	if c.MaxLifetime > 0 {
		db.SetConnMaxLifetime(c.MaxLifetime)
	}
	if c.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(c.MaxIdleTime)
	}
}

// Connect opens the pool and fails fast if the server cannot be reached.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	connector, err := pq.NewConnector(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	pool := sql.OpenDB(connector)
	cfg.apply(pool)

	db := &DB{DB: pool}
	if err := db.Ping(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates the memory tables. Every statement is IF NOT EXISTS.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Ping satisfies the readiness check.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unreachable: %w", err)
	}
	return nil
}
