package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the database connection pool from dbURL and makes sure the
// session table exists.
func InitDB(ctx context.Context, dbURL string) error {
	var err error
	once.Do(func() {
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		if err = pool.Ping(ctx); err != nil {
			err = fmt.Errorf("database not reachable: %w", err)
			return
		}
		if _, execErr := pool.Exec(ctx, sessionSchema); execErr != nil {
			err = fmt.Errorf("failed to create session table: %w", execErr)
		}
	})
	return err
}

// GetPool returns the database connection pool
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS kpi_sessions (
	id          TEXT PRIMARY KEY,
	input       TEXT NOT NULL DEFAULT '',
	result      JSONB,
	phase       TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
